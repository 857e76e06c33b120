package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/internal/models"
)

// settingsRepo is the concrete implementation of SettingsRepository
type settingsRepo struct {
	db *database.DB
}

// NewSettingsRepo creates a new settings repository
func NewSettingsRepo(db *database.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

// GetByAuthor returns the author's settings, or nil when none were saved
func (r *settingsRepo) GetByAuthor(ctx context.Context, authorID int64) (*models.Settings, error) {
	query, args, err := r.db.Builder().
		Select("settings_id", "author_id", "blog_title", "author_name").
		From("settings").
		Where(sq.Eq{"author_id": authorID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var settings models.Settings
	err = r.db.GetContext(ctx, &settings, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert creates or replaces the author's single settings row
func (r *settingsRepo) Upsert(ctx context.Context, settings *models.Settings) error {
	query, args, err := r.db.Builder().
		Insert("settings").
		Columns("author_id", "blog_title", "author_name").
		Values(settings.AuthorID, settings.BlogTitle, settings.AuthorName).
		Suffix("ON CONFLICT (author_id) DO UPDATE SET " +
			"blog_title = excluded.blog_title, author_name = excluded.author_name " +
			"RETURNING settings_id").
		ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx, query, args...).Scan(&settings.ID)
}
