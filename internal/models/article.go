package models

import (
	"strings"
	"time"
)

// DefaultDraftTitle is shown in place of an empty draft title
const DefaultDraftTitle = "New Draft"

// Article represents a blog article. PublishedAt stays nil while the article is a draft.
type Article struct {
	ID          int64      `json:"article_id" db:"article_id"`
	Title       string     `json:"title" db:"title"`
	Content     string     `json:"content" db:"content"`
	AuthorID    int64      `json:"author_id" db:"author_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	Views       int64      `json:"views" db:"views"`
}

// IsPublished reports whether the article has left the draft state
func (a *Article) IsPublished() bool {
	return a.PublishedAt != nil
}

// DisplayTitle returns the title, or the draft placeholder while it is empty
func (a *Article) DisplayTitle() string {
	if a.Title == "" {
		return DefaultDraftTitle
	}
	return a.Title
}

// CanPublish reports whether both title and content are present
func (a *Article) CanPublish() bool {
	return strings.TrimSpace(a.Title) != "" && strings.TrimSpace(a.Content) != ""
}

// ArticleListing is an article joined with the display name of its author
type ArticleListing struct {
	Article
	AuthorName string `json:"author_name" db:"author_name"`
}
