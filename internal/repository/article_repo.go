package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/internal/models"
)

var articleFields = []string{
	"article_id", "title", "content", "author_id", "created_at", "updated_at", "published_at", "views",
}

// articleColumns qualifies the article fields with a table alias
func articleColumns(alias string) []string {
	cols := make([]string, len(articleFields))
	for i, f := range articleFields {
		cols[i] = alias + "." + f + " AS " + f
	}
	return cols
}

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article and sets its generated ID
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = article.CreatedAt
	}

	query, args, err := r.db.Builder().
		Insert("articles").
		Columns("title", "content", "author_id", "created_at", "updated_at", "published_at", "views").
		Values(article.Title, article.Content, article.AuthorID, article.CreatedAt, article.UpdatedAt,
			article.PublishedAt, article.Views).
		Suffix("RETURNING article_id").
		ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx, query, args...).Scan(&article.ID)
}

// GetByIDAndAuthor retrieves an article only if it belongs to the given author
func (r *articleRepo) GetByIDAndAuthor(ctx context.Context, id, authorID int64) (*models.Article, error) {
	query, args, err := r.db.Builder().
		Select(articleFields...).
		From("articles").
		Where(sq.Eq{"article_id": id, "author_id": authorID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var article models.Article
	err = r.db.GetContext(ctx, &article, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetListing retrieves any article by ID joined with its author's account name
func (r *articleRepo) GetListing(ctx context.Context, id int64) (*models.ArticleListing, error) {
	query, args, err := r.db.Builder().
		Select(append(articleColumns("a"), "u.user_name AS author_name")...).
		From("articles a").
		Join("users u ON a.author_id = u.user_id").
		Where(sq.Eq{"a.article_id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var listing models.ArticleListing
	err = r.db.GetContext(ctx, &listing, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Update sets title and content of an author's article
func (r *articleRepo) Update(ctx context.Context, id, authorID int64, title, content string, updatedAt time.Time) (int64, error) {
	return r.exec(ctx, r.db.Builder().
		Update("articles").
		Set("title", title).
		Set("content", content).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"article_id": id, "author_id": authorID}))
}

// Publish stamps published_at on a draft. Already published articles are left untouched.
func (r *articleRepo) Publish(ctx context.Context, id, authorID int64, publishedAt time.Time) (int64, error) {
	return r.exec(ctx, r.db.Builder().
		Update("articles").
		Set("published_at", publishedAt).
		Where(sq.Eq{"article_id": id, "author_id": authorID, "published_at": nil}))
}

// Delete removes an author's article
func (r *articleRepo) Delete(ctx context.Context, id, authorID int64) (int64, error) {
	return r.exec(ctx, r.db.Builder().
		Delete("articles").
		Where(sq.Eq{"article_id": id, "author_id": authorID}))
}

func (r *articleRepo) exec(ctx context.Context, builder sq.Sqlizer) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByAuthor returns the author's published or draft articles with the account name attached
func (r *articleRepo) ListByAuthor(ctx context.Context, authorID int64, published bool) ([]*models.ArticleListing, error) {
	builder := r.db.Builder().
		Select(append(articleColumns("a"), "u.user_name AS author_name")...).
		From("articles a").
		Join("users u ON a.author_id = u.user_id").
		Where(sq.Eq{"a.author_id": authorID})

	if published {
		builder = builder.Where(sq.NotEq{"a.published_at": nil}).OrderBy("a.published_at DESC")
	} else {
		builder = builder.Where(sq.Eq{"a.published_at": nil}).OrderBy("a.updated_at DESC")
	}

	return r.list(ctx, builder)
}

// ListPublished returns every published article, newest first, with the
// effective author name: the settings override when present, else the account name.
func (r *articleRepo) ListPublished(ctx context.Context) ([]*models.ArticleListing, error) {
	builder := r.db.Builder().
		Select(append(articleColumns("a"), "COALESCE(s.author_name, u.user_name) AS author_name")...).
		From("articles a").
		LeftJoin("settings s ON a.author_id = s.author_id").
		LeftJoin("users u ON a.author_id = u.user_id").
		Where(sq.NotEq{"a.published_at": nil}).
		OrderBy("a.published_at DESC", "a.article_id DESC")

	return r.list(ctx, builder)
}

func (r *articleRepo) list(ctx context.Context, builder sq.SelectBuilder) ([]*models.ArticleListing, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	articles := []*models.ArticleListing{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, err
	}
	return articles, nil
}

// StreamByAuthor streams all of an author's articles for export
func (r *articleRepo) StreamByAuthor(ctx context.Context, authorID int64, callback func(*models.Article) error) error {
	query, args, err := r.db.Builder().
		Select(articleFields...).
		From("articles").
		Where(sq.Eq{"author_id": authorID}).
		OrderBy("created_at", "article_id").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var article models.Article
		if err := rows.StructScan(&article); err != nil {
			return err
		}
		if err := callback(&article); err != nil {
			return err
		}
	}

	return rows.Err()
}
