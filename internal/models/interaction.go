package models

import (
	"time"
)

// Like records that a user liked an article. At most one exists per (article, user).
type Like struct {
	ID        int64     `json:"like_id" db:"like_id"`
	ArticleID int64     `json:"article_id" db:"article_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// View records one counted view of an article. UserID is nil for anonymous readers.
type View struct {
	ID        int64     `json:"view_id" db:"view_id"`
	ArticleID int64     `json:"article_id" db:"article_id"`
	UserID    *int64    `json:"user_id,omitempty" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
