//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/blogging-tool/internal/config"
	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/repository"
	"github.com/blogging-tool/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container and returns a migrated connection
func setupPostgres(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blog"),
		postgres.WithUsername("blog"),
		postgres.WithPassword("blog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := database.New(&config.DatabaseConfig{
		Driver:       database.DriverPostgres,
		URL:          connStr,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		MaxLifetime:  time.Minute,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestPostgres_Repositories(t *testing.T) {
	db := setupPostgres(t)
	repos := repository.New(db)
	ctx := context.Background()

	version, dirty, err := db.Version()
	if err != nil || dirty || version != 2 {
		t.Fatalf("Expected clean schema version 2, got %d dirty=%v (%v)", version, dirty, err)
	}

	owner := createUser(t, repos, "Owner", "owner@example.com")
	reader := createUser(t, repos, "Reader", "reader@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		err := repos.User.Create(ctx, &models.User{UserName: "Again", Email: "owner@example.com"})
		if err == nil {
			t.Error("Expected unique constraint violation on duplicate email")
		}
	})

	t.Run("scoped mutations and publish once", func(t *testing.T) {
		article := createArticle(t, repos, owner.ID, "Draft", nil)

		n, err := repos.Article.Update(ctx, article.ID, reader.ID, "Hijack", "x", time.Now().UTC())
		if err != nil || n != 0 {
			t.Errorf("Expected 0 rows for foreign update, got %d (%v)", n, err)
		}

		first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		n, err = repos.Article.Publish(ctx, article.ID, owner.ID, first)
		if err != nil || n != 1 {
			t.Fatalf("Expected publish to affect 1 row, got %d (%v)", n, err)
		}
		n, _ = repos.Article.Publish(ctx, article.ID, owner.ID, first.Add(time.Hour))
		if n != 0 {
			t.Errorf("Expected republish to be a no-op, got %d rows", n)
		}

		got, _ := repos.Article.GetByIDAndAuthor(ctx, article.ID, owner.ID)
		if got.PublishedAt == nil || !got.PublishedAt.Equal(first) {
			t.Errorf("Expected published_at %v, got %v", first, got.PublishedAt)
		}
	})

	t.Run("likes views and comments", func(t *testing.T) {
		now := time.Now().UTC()
		article := createArticle(t, repos, owner.ID, "Post", &now)

		for i := 0; i < 2; i++ {
			if _, err := repos.Like.Add(ctx, &models.Like{ArticleID: article.ID, UserID: reader.ID}); err != nil {
				t.Fatalf("Like failed: %v", err)
			}
		}
		if count, _ := repos.Like.CountByArticle(ctx, article.ID); count != 1 {
			t.Errorf("Expected 1 like, got %d", count)
		}

		if err := repos.View.Record(ctx, &models.View{ArticleID: article.ID, UserID: &reader.ID}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		got, _ := repos.Article.GetByIDAndAuthor(ctx, article.ID, owner.ID)
		if got.Views != 1 {
			t.Errorf("Expected views counter 1, got %d", got.Views)
		}

		comment := &models.Comment{ArticleID: article.ID, CommenterName: "reader", Comment: "hi", CreatedAt: now}
		if err := repos.Comment.Create(ctx, comment); err != nil {
			t.Fatalf("Create comment failed: %v", err)
		}
		comments, _ := repos.Comment.ListByArticle(ctx, article.ID)
		if len(comments) != 1 || comments[0].ID != comment.ID {
			t.Errorf("Expected the stored comment back, got %+v", comments)
		}

		if n, err := repos.Article.Delete(ctx, article.ID, owner.ID); err != nil || n != 1 {
			t.Fatalf("Delete failed: %d (%v)", n, err)
		}
		if rows := testutil.CountRows(t, db, "views", sq.Eq{"article_id": article.ID}); rows != 0 {
			t.Errorf("Expected views to cascade, got %d", rows)
		}
	})

	t.Run("settings upsert", func(t *testing.T) {
		first := &models.Settings{AuthorID: owner.ID, BlogTitle: "My Blog", AuthorName: "Me"}
		second := &models.Settings{AuthorID: owner.ID, BlogTitle: "Renamed", AuthorName: "Still Me"}
		if err := repos.Settings.Upsert(ctx, first); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		if err := repos.Settings.Upsert(ctx, second); err != nil {
			t.Fatalf("Second upsert failed: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("Expected one settings row, got ids %d and %d", first.ID, second.ID)
		}
	})

	t.Run("listing newest first", func(t *testing.T) {
		older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := older.Add(24 * time.Hour)
		createArticle(t, repos, reader.ID, "Older", &older)
		createArticle(t, repos, reader.ID, "Newer", &newer)

		listed, err := repos.Article.ListByAuthor(ctx, reader.ID, true)
		if err != nil {
			t.Fatalf("ListByAuthor failed: %v", err)
		}
		if len(listed) != 2 || listed[0].Title != "Newer" {
			t.Errorf("Expected Newer first, got %+v", listed)
		}
	})

	t.Run("migrate down and up", func(t *testing.T) {
		if err := db.MigrateDown(); err != nil {
			t.Fatalf("MigrateDown failed: %v", err)
		}
		if v, _, _ := db.Version(); v != 1 {
			t.Errorf("Expected version 1, got %d", v)
		}
		if err := db.RunMigrations(); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}
	})
}
