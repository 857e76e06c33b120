package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Create inserts a new comment and sets its generated ID
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.db.Builder().
		Insert("comments").
		Columns("article_id", "commenter_name", "comment", "created_at").
		Values(comment.ArticleID, comment.CommenterName, comment.Comment, comment.CreatedAt).
		Suffix("RETURNING comment_id").
		ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx, query, args...).Scan(&comment.ID)
}

// ListByArticle returns the comments on an article, newest first
func (r *commentRepo) ListByArticle(ctx context.Context, articleID int64) ([]*models.Comment, error) {
	query, args, err := r.db.Builder().
		Select("comment_id", "article_id", "commenter_name", "comment", "created_at").
		From("comments").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("created_at DESC", "comment_id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	comments := []*models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, err
	}
	return comments, nil
}
