package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/internal/models"
	"github.com/jmoiron/sqlx"
)

// likeRepo is the concrete implementation of LikeRepository
type likeRepo struct {
	db *database.DB
}

// NewLikeRepo creates a new like repository
func NewLikeRepo(db *database.DB) LikeRepository {
	return &likeRepo{db: db}
}

// Add inserts a like, relying on the (article_id, user_id) unique key to ignore repeats
func (r *likeRepo) Add(ctx context.Context, like *models.Like) (bool, error) {
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.db.Builder().
		Insert("likes").
		Columns("article_id", "user_id", "created_at").
		Values(like.ArticleID, like.UserID, like.CreatedAt).
		Suffix("ON CONFLICT (article_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountByArticle returns the number of likes on an article
func (r *likeRepo) CountByArticle(ctx context.Context, articleID int64) (int, error) {
	query, args, err := r.db.Builder().
		Select("COUNT(*)").
		From("likes").
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	return count, err
}

// viewRepo is the concrete implementation of ViewRepository
type viewRepo struct {
	db *database.DB
}

// NewViewRepo creates a new view repository
func NewViewRepo(db *database.DB) ViewRepository {
	return &viewRepo{db: db}
}

// Record inserts the view row and increments articles.views in one transaction
func (r *viewRepo) Record(ctx context.Context, view *models.View) error {
	if view.CreatedAt.IsZero() {
		view.CreatedAt = time.Now().UTC()
	}

	insert, insertArgs, err := r.db.Builder().
		Insert("views").
		Columns("article_id", "user_id", "created_at").
		Values(view.ArticleID, view.UserID, view.CreatedAt).
		Suffix("RETURNING view_id").
		ToSql()
	if err != nil {
		return err
	}

	bump, bumpArgs, err := r.db.Builder().
		Update("articles").
		Set("views", sq.Expr("views + 1")).
		Where(sq.Eq{"article_id": view.ArticleID}).
		ToSql()
	if err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, insert, insertArgs...).Scan(&view.ID); err != nil {
			return fmt.Errorf("failed to insert view: %w", err)
		}
		if _, err := tx.ExecContext(ctx, bump, bumpArgs...); err != nil {
			return fmt.Errorf("failed to increment view counter: %w", err)
		}
		return nil
	})
}
