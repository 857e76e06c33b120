package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/blogging-tool/internal/auth"
	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/repository"
	"github.com/blogging-tool/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password alike
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when an operation needs a logged in user
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when an article does not exist or is not visible to the caller
	ErrNotFound = errors.New("not found")
	// ErrRegistration hides the reason a registration was refused
	ErrRegistration = errors.New("error registering user")
	// ErrPublishIncomplete is returned when publishing an article without title or content
	ErrPublishIncomplete = errors.New("title and content are required to publish")
	// ErrUnsupportedFormat is returned for an unknown export format
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// User-facing one-shot messages
const (
	PublishIncompleteMessage = "Title and content are required to publish the article."
	LikeLoginMessage         = "Please log in to like articles."
)

// AuthService defines the interface for local and federated login
type AuthService interface {
	Register(ctx context.Context, form *validation.RegisterForm) (*models.User, error)
	Login(ctx context.Context, form *validation.LoginForm) (*models.User, error)
	LoginWithIdentity(ctx context.Context, identity *auth.Identity) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Dashboard is the author's home view
type Dashboard struct {
	Published  []*models.ArticleListing
	Drafts     []*models.ArticleListing
	BlogTitle  string
	AuthorName string
}

// ArticleService defines the author-only article lifecycle.
// Every operation is scoped to articles owned by authorID.
type ArticleService interface {
	Dashboard(ctx context.Context, authorID int64) (*Dashboard, error)
	CreateDraft(ctx context.Context, authorID int64) (*models.Article, error)
	GetForEdit(ctx context.Context, id, authorID int64) (*models.Article, error)
	// Update returns the unmodified article together with validation.Errors when the form is invalid
	Update(ctx context.Context, id, authorID int64, form *validation.ArticleForm) (*models.Article, error)
	Publish(ctx context.Context, id, authorID int64) error
	Delete(ctx context.Context, id, authorID int64) error
}

// ArticlePage is a published article with its comments and like count
type ArticlePage struct {
	Article   *models.ArticleListing
	Comments  []*models.Comment
	LikeCount int
}

// ReaderService defines the public reader operations
type ReaderService interface {
	ListPublished(ctx context.Context) ([]*models.ArticleListing, error)
	// ViewArticle loads the article page for viewerID (0 for anonymous) and
	// records a view when countView is set
	ViewArticle(ctx context.Context, id, viewerID int64, countView bool) (*ArticlePage, error)
	// Like reports whether a new like was recorded
	Like(ctx context.Context, articleID, userID int64) (bool, error)
	Comment(ctx context.Context, articleID int64, form *validation.CommentForm) (*models.Comment, error)
}

// SettingsService defines the per-author settings operations
type SettingsService interface {
	Get(ctx context.Context, authorID int64) (*models.Settings, error)
	Save(ctx context.Context, authorID int64, form *validation.SettingsForm) (*models.Settings, error)
}

// ExportService defines the interface for article exports
type ExportService interface {
	StreamArticles(ctx context.Context, w http.ResponseWriter, authorID int64, format string) error
}

// Services holds all service interfaces
type Services struct {
	Auth     AuthService
	Article  ArticleService
	Reader   ReaderService
	Settings SettingsService
	Export   ExportService
}

type options struct {
	now        func() time.Time
	bcryptCost int
	validator  *validation.Validator
}

// Option customizes the services
type Option func(*options)

// WithClock replaces time.Now, e.g. for deterministic tests
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithBcryptCost sets the password hashing cost
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, log zerolog.Logger, opts ...Option) *Services {
	o := &options{
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
		validator:  validation.NewValidator(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Services{
		Auth:     newAuthService(repos, o, log),
		Article:  newArticleService(repos, o, log),
		Reader:   newReaderService(repos, o, log),
		Settings: newSettingsService(repos, o, log),
		Export:   newExportService(repos, log),
	}
}

// ValidationErrors extracts field-level validation errors from err
func ValidationErrors(err error) (validation.Errors, bool) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
