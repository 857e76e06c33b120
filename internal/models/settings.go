package models

// Placeholder values used when an author has not saved settings yet
const (
	DashboardBlogTitle  = "Set your Blog Title in Settings"
	DashboardAuthorName = "Default Author Name"
	FormBlogTitle       = "Default Blog Title"
	FormAuthorName      = "Set your name"
)

// Settings is the per-author blog display configuration
type Settings struct {
	ID         int64  `json:"settings_id" db:"settings_id"`
	AuthorID   int64  `json:"author_id" db:"author_id"`
	BlogTitle  string `json:"blog_title" db:"blog_title"`
	AuthorName string `json:"author_name" db:"author_name"`
}

// DefaultSettings returns unsaved settings for display on the settings form
func DefaultSettings(authorID int64) *Settings {
	return &Settings{
		AuthorID:   authorID,
		BlogTitle:  FormBlogTitle,
		AuthorName: FormAuthorName,
	}
}
