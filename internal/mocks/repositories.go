package mocks

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/repository"
)

// ErrDuplicateEmail mimics the unique constraint on users.email
var ErrDuplicateEmail = errors.New("UNIQUE constraint failed: users.email")

// MockRepositories groups in-memory repositories that see each other's data,
// the way joined tables do.
type MockRepositories struct {
	User     *MockUserRepository
	Article  *MockArticleRepository
	Comment  *MockCommentRepository
	Like     *MockLikeRepository
	View     *MockViewRepository
	Settings *MockSettingsRepository
}

// NewMockRepositories creates an empty set of linked repositories
func NewMockRepositories() *MockRepositories {
	users := NewMockUserRepository()
	settings := NewMockSettingsRepository()
	articles := NewMockArticleRepository(users, settings)
	return &MockRepositories{
		User:     users,
		Article:  articles,
		Comment:  NewMockCommentRepository(),
		Like:     NewMockLikeRepository(),
		View:     NewMockViewRepository(articles),
		Settings: settings,
	}
}

// Repositories exposes the mocks through the repository interfaces
func (m *MockRepositories) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:     m.User,
		Article:  m.Article,
		Comment:  m.Comment,
		Like:     m.Like,
		View:     m.View,
		Settings: m.Settings,
	}
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users       map[int64]*models.User
	EmailToUser map[string]*models.User
	InsertError error
	GetError    error
	nextID      int64
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:       make(map[int64]*models.User),
		EmailToUser: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if _, exists := m.EmailToUser[user.Email]; exists {
		return ErrDuplicateEmail
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.Users[user.ID] = &stored
	m.EmailToUser[user.Email] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return copyUser(m.Users[id]), nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return copyUser(m.EmailToUser[email]), nil
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.GetError != nil {
		return false, m.GetError
	}
	_, exists := m.EmailToUser[email]
	return exists, nil
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	Articles    map[int64]*models.Article
	InsertError error
	GetError    error
	UpdateError error
	users       *MockUserRepository
	settings    *MockSettingsRepository
	nextID      int64
}

var _ repository.ArticleRepository = (*MockArticleRepository)(nil)

func NewMockArticleRepository(users *MockUserRepository, settings *MockSettingsRepository) *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[int64]*models.Article),
		users:    users,
		settings: settings,
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.nextID++
	article.ID = m.nextID
	stored := *article
	m.Articles[article.ID] = &stored
	return nil
}

func (m *MockArticleRepository) GetByIDAndAuthor(ctx context.Context, id, authorID int64) (*models.Article, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.Articles[id]
	if !ok || a.AuthorID != authorID {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (m *MockArticleRepository) GetListing(ctx context.Context, id int64) (*models.ArticleListing, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	return m.listing(a, false), nil
}

func (m *MockArticleRepository) listing(a *models.Article, preferSettings bool) *models.ArticleListing {
	l := &models.ArticleListing{Article: *a}
	if u := m.users.Users[a.AuthorID]; u != nil {
		l.AuthorName = u.UserName
	}
	if preferSettings {
		if s := m.settings.Settings[a.AuthorID]; s != nil {
			l.AuthorName = s.AuthorName
		}
	}
	return l
}

func (m *MockArticleRepository) Update(ctx context.Context, id, authorID int64, title, content string, updatedAt time.Time) (int64, error) {
	if m.UpdateError != nil {
		return 0, m.UpdateError
	}
	a, ok := m.Articles[id]
	if !ok || a.AuthorID != authorID {
		return 0, nil
	}
	a.Title, a.Content, a.UpdatedAt = title, content, updatedAt
	return 1, nil
}

func (m *MockArticleRepository) Publish(ctx context.Context, id, authorID int64, publishedAt time.Time) (int64, error) {
	if m.UpdateError != nil {
		return 0, m.UpdateError
	}
	a, ok := m.Articles[id]
	if !ok || a.AuthorID != authorID || a.PublishedAt != nil {
		return 0, nil
	}
	a.PublishedAt = &publishedAt
	return 1, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id, authorID int64) (int64, error) {
	if m.UpdateError != nil {
		return 0, m.UpdateError
	}
	a, ok := m.Articles[id]
	if !ok || a.AuthorID != authorID {
		return 0, nil
	}
	delete(m.Articles, id)
	return 1, nil
}

func (m *MockArticleRepository) ListByAuthor(ctx context.Context, authorID int64, published bool) ([]*models.ArticleListing, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	out := []*models.ArticleListing{}
	for _, a := range m.sorted() {
		if a.AuthorID == authorID && a.IsPublished() == published {
			out = append(out, m.listing(a, false))
		}
	}
	return out, nil
}

func (m *MockArticleRepository) ListPublished(ctx context.Context) ([]*models.ArticleListing, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	out := []*models.ArticleListing{}
	for _, a := range m.sorted() {
		if a.IsPublished() {
			out = append(out, m.listing(a, true))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(*out[j].PublishedAt)
	})
	return out, nil
}

func (m *MockArticleRepository) StreamByAuthor(ctx context.Context, authorID int64, callback func(*models.Article) error) error {
	if m.GetError != nil {
		return m.GetError
	}
	for _, a := range m.sorted() {
		if a.AuthorID != authorID {
			continue
		}
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockArticleRepository) sorted() []*models.Article {
	out := make([]*models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	Comments    []*models.Comment
	InsertError error
	nextID      int64
}

var _ repository.CommentRepository = (*MockCommentRepository)(nil)

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.nextID++
	comment.ID = m.nextID
	stored := *comment
	m.Comments = append(m.Comments, &stored)
	return nil
}

func (m *MockCommentRepository) ListByArticle(ctx context.Context, articleID int64) ([]*models.Comment, error) {
	out := []*models.Comment{}
	for i := len(m.Comments) - 1; i >= 0; i-- {
		if m.Comments[i].ArticleID == articleID {
			out = append(out, m.Comments[i])
		}
	}
	return out, nil
}

// MockLikeRepository is a mock implementation of LikeRepository
type MockLikeRepository struct {
	Likes       map[[2]int64]*models.Like
	InsertError error
}

var _ repository.LikeRepository = (*MockLikeRepository)(nil)

func NewMockLikeRepository() *MockLikeRepository {
	return &MockLikeRepository{Likes: make(map[[2]int64]*models.Like)}
}

func (m *MockLikeRepository) Add(ctx context.Context, like *models.Like) (bool, error) {
	if m.InsertError != nil {
		return false, m.InsertError
	}
	key := [2]int64{like.ArticleID, like.UserID}
	if _, exists := m.Likes[key]; exists {
		return false, nil
	}
	stored := *like
	m.Likes[key] = &stored
	return true, nil
}

func (m *MockLikeRepository) CountByArticle(ctx context.Context, articleID int64) (int, error) {
	count := 0
	for key := range m.Likes {
		if key[0] == articleID {
			count++
		}
	}
	return count, nil
}

// MockViewRepository is a mock implementation of ViewRepository
type MockViewRepository struct {
	Views       []*models.View
	RecordError error
	articles    *MockArticleRepository
}

var _ repository.ViewRepository = (*MockViewRepository)(nil)

func NewMockViewRepository(articles *MockArticleRepository) *MockViewRepository {
	return &MockViewRepository{articles: articles}
}

func (m *MockViewRepository) Record(ctx context.Context, view *models.View) error {
	if m.RecordError != nil {
		return m.RecordError
	}
	a, ok := m.articles.Articles[view.ArticleID]
	if !ok {
		return errors.New("FOREIGN KEY constraint failed")
	}
	stored := *view
	m.Views = append(m.Views, &stored)
	a.Views++
	return nil
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	Settings    map[int64]*models.Settings
	UpsertError error
	nextID      int64
}

var _ repository.SettingsRepository = (*MockSettingsRepository)(nil)

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{Settings: make(map[int64]*models.Settings)}
}

func (m *MockSettingsRepository) GetByAuthor(ctx context.Context, authorID int64) (*models.Settings, error) {
	s, ok := m.Settings[authorID]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, settings *models.Settings) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	if existing, ok := m.Settings[settings.AuthorID]; ok {
		settings.ID = existing.ID
	} else {
		m.nextID++
		settings.ID = m.nextID
	}
	stored := *settings
	m.Settings[settings.AuthorID] = &stored
	return nil
}
