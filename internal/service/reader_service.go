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

// readerService is the concrete implementation of ReaderService
type readerService struct {
	repos *repository.Repositories
	opts  *options
	log   zerolog.Logger
}

func newReaderService(repos *repository.Repositories, o *options, log zerolog.Logger) *readerService {
	return &readerService{
		repos: repos,
		opts:  o,
		log:   log.With().Str("service", "reader").Logger(),
	}
}

// ListPublished returns all published articles, newest first
func (s *readerService) ListPublished(ctx context.Context) ([]*models.ArticleListing, error) {
	articles, err := s.repos.Article.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list published articles: %w", err)
	}
	return articles, nil
}

// visible loads an article a reader may see: published ones, and drafts only for their author
func (s *readerService) visible(ctx context.Context, id, viewerID int64) (*models.ArticleListing, error) {
	article, err := s.repos.Article.GetListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, ErrNotFound
	}
	if !article.IsPublished() && (viewerID == 0 || article.AuthorID != viewerID) {
		return nil, ErrNotFound
	}
	return article, nil
}

// ViewArticle loads the article page and optionally records a view
func (s *readerService) ViewArticle(ctx context.Context, id, viewerID int64, countView bool) (*ArticlePage, error) {
	article, err := s.visible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	if countView && article.IsPublished() {
		view := &models.View{ArticleID: id, CreatedAt: s.opts.now().UTC()}
		if viewerID != 0 {
			view.UserID = &viewerID
		}
		if err := s.repos.View.Record(ctx, view); err != nil {
			return nil, fmt.Errorf("failed to record view: %w", err)
		}
		article.Views++
		observability.ArticleViews.Inc()
	}

	comments, err := s.repos.Comment.ListByArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	likes, err := s.repos.Like.CountByArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	return &ArticlePage{Article: article, Comments: comments, LikeCount: likes}, nil
}

// Like records the user's like once; repeats are accepted and ignored
func (s *readerService) Like(ctx context.Context, articleID, userID int64) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthorized
	}
	if _, err := s.visible(ctx, articleID, userID); err != nil {
		return false, err
	}

	added, err := s.repos.Like.Add(ctx, &models.Like{
		ArticleID: articleID,
		UserID:    userID,
		CreatedAt: s.opts.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	if added {
		observability.ArticleLikes.Inc()
	}
	return added, nil
}

// Comment appends a comment to a visible article
func (s *readerService) Comment(ctx context.Context, articleID int64, form *validation.CommentForm) (*models.Comment, error) {
	if _, err := s.visible(ctx, articleID, 0); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ArticleID:     articleID,
		CommenterName: form.CommenterName,
		Comment:       form.Comment,
		CreatedAt:     s.opts.now().UTC(),
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	observability.Comments.Inc()
	return comment, nil
}
