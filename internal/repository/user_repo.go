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

var userColumns = []string{"user_id", "user_name", "email", "password", "created_at"}

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Create inserts a new user and sets its generated ID
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.db.Builder().
		Insert("users").
		Columns("user_name", "email", "password", "created_at").
		Values(user.UserName, user.Email, user.Password, user.CreatedAt).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx, query, args...).Scan(&user.ID)
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, sq.Eq{"user_id": id})
}

// GetByEmail retrieves a user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *userRepo) getOne(ctx context.Context, pred sq.Eq) (*models.User, error) {
	query, args, err := r.db.Builder().Select(userColumns...).From("users").Where(pred).ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists checks if a user with the given email exists
func (r *userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	query, args, err := r.db.Builder().
		Select("COUNT(*)").From("users").Where(sq.Eq{"email": email}).ToSql()
	if err != nil {
		return false, err
	}
	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	return count > 0, err
}
