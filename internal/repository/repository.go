package repository

import (
	"context"
	"time"

	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// ArticleRepository defines the interface for article data operations.
// Mutations are scoped by (article id, author id) and return the number of affected rows.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByIDAndAuthor(ctx context.Context, id, authorID int64) (*models.Article, error)
	GetListing(ctx context.Context, id int64) (*models.ArticleListing, error)
	Update(ctx context.Context, id, authorID int64, title, content string, updatedAt time.Time) (int64, error)
	Publish(ctx context.Context, id, authorID int64, publishedAt time.Time) (int64, error)
	Delete(ctx context.Context, id, authorID int64) (int64, error)
	ListByAuthor(ctx context.Context, authorID int64, published bool) ([]*models.ArticleListing, error)
	ListPublished(ctx context.Context) ([]*models.ArticleListing, error)
	StreamByAuthor(ctx context.Context, authorID int64, callback func(*models.Article) error) error
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByArticle(ctx context.Context, articleID int64) ([]*models.Comment, error)
}

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// Add inserts the like unless one already exists and reports whether a row was created
	Add(ctx context.Context, like *models.Like) (bool, error)
	CountByArticle(ctx context.Context, articleID int64) (int, error)
}

// ViewRepository defines the interface for view tracking
type ViewRepository interface {
	// Record stores a view row and bumps the article's counter atomically
	Record(ctx context.Context, view *models.View) error
}

// SettingsRepository defines the interface for per-author settings
type SettingsRepository interface {
	GetByAuthor(ctx context.Context, authorID int64) (*models.Settings, error)
	Upsert(ctx context.Context, settings *models.Settings) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Article  ArticleRepository
	Comment  CommentRepository
	Like     LikeRepository
	View     ViewRepository
	Settings SettingsRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Article:  NewArticleRepo(db),
		Comment:  NewCommentRepo(db),
		Like:     NewLikeRepo(db),
		View:     NewViewRepo(db),
		Settings: NewSettingsRepo(db),
	}
}
