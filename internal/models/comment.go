package models

import (
	"time"
)

// Comment is an append-only reader comment on an article
type Comment struct {
	ID            int64     `json:"comment_id" db:"comment_id"`
	ArticleID     int64     `json:"article_id" db:"article_id"`
	CommenterName string    `json:"commenter_name" db:"commenter_name"`
	Comment       string    `json:"comment" db:"comment"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
