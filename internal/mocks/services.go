package mocks

import (
	"context"
	"net/url"

	"github.com/blogging-tool/internal/auth"
)

// MockProvider is a mock implementation of auth.Provider
type MockProvider struct {
	Identity     *auth.Identity
	ExchangeErr  error
	ExchangeFunc func(ctx context.Context, code string) (*auth.Identity, error)
	Codes        []string
}

// Verify interface compliance
var _ auth.Provider = (*MockProvider)(nil)

func NewMockProvider(identity *auth.Identity) *MockProvider {
	return &MockProvider{Identity: identity}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (*auth.Identity, error) {
	m.Codes = append(m.Codes, code)
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, code)
	}
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	identity := *m.Identity
	return &identity, nil
}
