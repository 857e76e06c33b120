// Package session keeps per-browser state on the server, keyed by a signed cookie.
package session

import (
	"slices"
	"time"

	"github.com/blogging-tool/internal/models"
)

// State is everything the server remembers about one browser session.
type State struct {
	Authenticated bool         `json:"authenticated"`
	UserID        int64        `json:"user_id,omitempty"`
	User          *models.User `json:"user,omitempty"`

	// One-shot messages, cleared when read
	PublishMessage string `json:"publish_message,omitempty"`
	LikeMessage    string `json:"like_message,omitempty"`

	// Articles whose view was already counted in this session
	ViewedArticles []int64 `json:"viewed_articles,omitempty"`

	// CSRF state of a pending OAuth redirect
	OAuthState string `json:"oauth_state,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
}

// Login marks the session authenticated as user
func (s *State) Login(user *models.User) {
	s.Authenticated = true
	s.UserID = user.ID
	s.User = user
}

// Logout drops the identity but keeps the session
func (s *State) Logout() {
	s.Authenticated = false
	s.UserID = 0
	s.User = nil
}

// HasViewed reports whether the article's view was already counted
func (s *State) HasViewed(articleID int64) bool {
	return slices.Contains(s.ViewedArticles, articleID)
}

// MarkViewed remembers that the article's view was counted
func (s *State) MarkViewed(articleID int64) {
	if !s.HasViewed(articleID) {
		s.ViewedArticles = append(s.ViewedArticles, articleID)
	}
}

// PopPublishMessage returns and clears the publish message
func (s *State) PopPublishMessage() string {
	msg := s.PublishMessage
	s.PublishMessage = ""
	return msg
}

// PopLikeMessage returns and clears the like message
func (s *State) PopLikeMessage() string {
	msg := s.LikeMessage
	s.LikeMessage = ""
	return msg
}

// Expired reports whether the session is past its fixed expiry
func (s *State) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
