// Package auth federates login to an external OAuth 2.0 identity provider.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/blogging-tool/internal/config"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint
const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// ErrNoEmail is returned when the provider does not disclose an email address
var ErrNoEmail = errors.New("identity provider returned no email")

// Identity is what the provider asserts about the user
type Identity struct {
	Email string
	Name  string
}

// Provider runs the authorization-code flow against one identity provider
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// GoogleProvider implements Provider for Google accounts
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// Option customizes a GoogleProvider
type Option func(*GoogleProvider)

// WithEndpoint points the provider at different token and userinfo endpoints
func WithEndpoint(endpoint oauth2.Endpoint, userInfoURL string) Option {
	return func(p *GoogleProvider) {
		p.config.Endpoint = endpoint
		p.userInfoURL = userInfoURL
	}
}

// NewGoogleProvider creates a Google provider from the OAuth configuration
func NewGoogleProvider(cfg config.OAuthConfig, opts ...Option) *GoogleProvider {
	p := &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: GoogleUserInfoURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider label used in logs and metrics
func (p *GoogleProvider) Name() string {
	return "google"
}

// AuthCodeURL returns the consent page URL carrying state
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Exchange trades the callback code for a token and fetches the user's profile
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, body)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return nil, ErrNoEmail
	}

	return &Identity{Email: info.Email, Name: info.Name}, nil
}

// NewState returns an unguessable value for the OAuth state parameter
func NewState() string {
	return uuid.NewString()
}
