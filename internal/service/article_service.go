package service

import (
	"context"
	"fmt"

	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/observability"
	"github.com/blogging-tool/internal/repository"
	"github.com/blogging-tool/internal/validation"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repos     *repository.Repositories
	validator *validation.Validator
	opts      *options
	log       zerolog.Logger
}

func newArticleService(repos *repository.Repositories, o *options, log zerolog.Logger) *articleService {
	return &articleService{
		repos:     repos,
		validator: o.validator,
		opts:      o,
		log:       log.With().Str("service", "article").Logger(),
	}
}

// Dashboard collects the author's published articles, drafts and display settings
func (s *articleService) Dashboard(ctx context.Context, authorID int64) (*Dashboard, error) {
	published, err := s.repos.Article.ListByAuthor(ctx, authorID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}

	drafts, err := s.repos.Article.ListByAuthor(ctx, authorID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	settings, err := s.repos.Settings.GetByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	dashboard := &Dashboard{
		Published:  published,
		Drafts:     drafts,
		BlogTitle:  models.DashboardBlogTitle,
		AuthorName: models.DashboardAuthorName,
	}
	if settings != nil {
		dashboard.BlogTitle = settings.BlogTitle
		dashboard.AuthorName = settings.AuthorName
	}
	return dashboard, nil
}

// CreateDraft inserts an empty unpublished article owned by authorID
func (s *articleService) CreateDraft(ctx context.Context, authorID int64) (*models.Article, error) {
	if authorID == 0 {
		return nil, ErrUnauthorized
	}

	now := s.opts.now().UTC()
	article := &models.Article{
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Article.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	s.log.Info().Int64("article_id", article.ID).Int64("author_id", authorID).Msg("Draft created")
	return article, nil
}

// GetForEdit returns the author's article or ErrNotFound
func (s *articleService) GetForEdit(ctx context.Context, id, authorID int64) (*models.Article, error) {
	article, err := s.repos.Article.GetByIDAndAuthor(ctx, id, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, ErrNotFound
	}
	return article, nil
}

// Update saves title and content and advances updated_at
func (s *articleService) Update(ctx context.Context, id, authorID int64, form *validation.ArticleForm) (*models.Article, error) {
	article, err := s.GetForEdit(ctx, id, authorID)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.ValidateArticle(form); len(errs) > 0 {
		return article, errs
	}

	now := s.opts.now().UTC()
	n, err := s.repos.Article.Update(ctx, id, authorID, form.Title, form.Content, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	article.Title = form.Title
	article.Content = form.Content
	article.UpdatedAt = now
	return article, nil
}

// Publish moves a complete draft to published. Publishing twice keeps the first timestamp.
func (s *articleService) Publish(ctx context.Context, id, authorID int64) error {
	article, err := s.GetForEdit(ctx, id, authorID)
	if err != nil {
		return err
	}

	if !article.CanPublish() {
		return ErrPublishIncomplete
	}
	if article.IsPublished() {
		return nil
	}

	n, err := s.repos.Article.Publish(ctx, id, authorID, s.opts.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to publish article: %w", err)
	}
	if n > 0 {
		observability.ArticlesPublished.Inc()
		s.log.Info().Int64("article_id", id).Msg("Article published")
	}
	return nil
}

// Delete removes the author's article. Deleting a missing or foreign article is a no-op.
func (s *articleService) Delete(ctx context.Context, id, authorID int64) error {
	n, err := s.repos.Article.Delete(ctx, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	s.log.Info().Int64("article_id", id).Int64("rows", n).Msg("Article delete")
	return nil
}
