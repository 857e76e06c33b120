package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/repository"
	"github.com/blogging-tool/internal/testutil"
	"github.com/rs/zerolog"
)

func newRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.New(testutil.NewSQLiteDB(t))
}

// newStore also returns the connection for row counts
func newStore(t *testing.T) (*repository.Repositories, *database.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return repository.New(db), db
}

func createUser(t *testing.T, repos *repository.Repositories, name, email string) *models.User {
	t.Helper()
	hash := "hash"
	user := &models.User{UserName: name, Email: email, Password: &hash}
	if err := repos.User.Create(context.Background(), user); err != nil {
		t.Fatalf("Create user failed: %v", err)
	}
	return user
}

func createArticle(t *testing.T, repos *repository.Repositories, authorID int64, title string, publishedAt *time.Time) *models.Article {
	t.Helper()
	article := &models.Article{Title: title, Content: "body of " + title, AuthorID: authorID, PublishedAt: publishedAt}
	if err := repos.Article.Create(context.Background(), article); err != nil {
		t.Fatalf("Create article failed: %v", err)
	}
	return article
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	user := createUser(t, repos, "Ada", "ada@example.com")
	if user.ID == 0 {
		t.Fatal("Expected generated user ID")
	}

	stored, err := repos.User.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if stored == nil || stored.ID != user.ID || stored.UserName != "Ada" {
		t.Errorf("Unexpected user: %+v", stored)
	}
	if stored.IsFederated() {
		t.Error("User with password should not be federated")
	}

	missing, err := repos.User.GetByID(ctx, 9999)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing user, got %+v", missing)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repos, db := newStore(t)
	ctx := context.Background()

	createUser(t, repos, "First", "dup@example.com")

	exists, err := repos.User.EmailExists(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if !exists {
		t.Error("Email should exist")
	}

	err = repos.User.Create(ctx, &models.User{UserName: "Second", Email: "dup@example.com"})
	if err == nil {
		t.Error("Expected unique constraint violation on duplicate email")
	}

	if count := testutil.CountRows(t, db, "users", nil); count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}
}

func TestUserRepository_FederatedUserHasNoPassword(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	user := &models.User{UserName: "Oauth", Email: "oauth@example.com"}
	if err := repos.User.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stored, _ := repos.User.GetByID(ctx, user.ID)
	if stored == nil || !stored.IsFederated() {
		t.Errorf("Expected federated user, got %+v", stored)
	}
}

func TestArticleRepository_ScopedMutations(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")
	other := createUser(t, repos, "Other", "other@example.com")
	article := createArticle(t, repos, owner.ID, "Draft", nil)

	// Another author cannot see or touch the article
	got, err := repos.Article.GetByIDAndAuthor(ctx, article.ID, other.ID)
	if err != nil {
		t.Fatalf("GetByIDAndAuthor failed: %v", err)
	}
	if got != nil {
		t.Error("Expected nil for foreign article")
	}

	n, err := repos.Article.Update(ctx, article.ID, other.ID, "Hijack", "x", time.Now().UTC())
	if err != nil || n != 0 {
		t.Errorf("Expected 0 rows for foreign update, got %d (%v)", n, err)
	}
	n, _ = repos.Article.Delete(ctx, article.ID, other.ID)
	if n != 0 {
		t.Errorf("Expected 0 rows for foreign delete, got %d", n)
	}

	// The owner can
	n, err = repos.Article.Update(ctx, article.ID, owner.ID, "Edited", "Body", time.Now().UTC())
	if err != nil || n != 1 {
		t.Fatalf("Expected 1 row updated, got %d (%v)", n, err)
	}
	got, _ = repos.Article.GetByIDAndAuthor(ctx, article.ID, owner.ID)
	if got.Title != "Edited" || got.Content != "Body" {
		t.Errorf("Update not persisted: %+v", got)
	}
	if got.IsPublished() {
		t.Error("Edit must not publish the article")
	}
}

func TestArticleRepository_PublishOnce(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")
	article := createArticle(t, repos, owner.ID, "Draft", nil)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n, err := repos.Article.Publish(ctx, article.ID, owner.ID, first)
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
}

func TestArticleRepository_ListByAuthor(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")
	other := createUser(t, repos, "Other", "other@example.com")

	published := time.Now().UTC()
	createArticle(t, repos, owner.ID, "Published", &published)
	createArticle(t, repos, owner.ID, "Draft A", nil)
	createArticle(t, repos, owner.ID, "Draft B", nil)
	createArticle(t, repos, other.ID, "Someone else", nil)

	drafts, err := repos.Article.ListByAuthor(ctx, owner.ID, false)
	if err != nil {
		t.Fatalf("ListByAuthor failed: %v", err)
	}
	if len(drafts) != 2 {
		t.Errorf("Expected 2 drafts, got %d", len(drafts))
	}

	pubs, _ := repos.Article.ListByAuthor(ctx, owner.ID, true)
	if len(pubs) != 1 || pubs[0].Title != "Published" {
		t.Fatalf("Expected the single published article, got %+v", pubs)
	}
	if pubs[0].AuthorName != "Owner" {
		t.Errorf("Expected author name Owner, got %s", pubs[0].AuthorName)
	}
}

func TestArticleRepository_ListPublished(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	alice := createUser(t, repos, "alice", "alice@example.com")
	bob := createUser(t, repos, "bob", "bob@example.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := base
	newer := base.Add(48 * time.Hour)
	createArticle(t, repos, alice.ID, "Older", &older)
	createArticle(t, repos, bob.ID, "Newer", &newer)
	createArticle(t, repos, alice.ID, "Hidden draft", nil)

	if err := repos.Settings.Upsert(ctx, &models.Settings{AuthorID: alice.ID, BlogTitle: "A", AuthorName: "Alice Pen"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	list, err := repos.Article.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 published articles, got %d", len(list))
	}
	if list[0].Title != "Newer" || list[1].Title != "Older" {
		t.Errorf("Expected newest first, got %s then %s", list[0].Title, list[1].Title)
	}
	if list[0].AuthorName != "bob" {
		t.Errorf("Expected account name fallback 'bob', got %s", list[0].AuthorName)
	}
	if list[1].AuthorName != "Alice Pen" {
		t.Errorf("Expected settings author name 'Alice Pen', got %s", list[1].AuthorName)
	}
}

func TestArticleRepository_StreamByAuthor(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")
	other := createUser(t, repos, "Other", "other@example.com")
	createArticle(t, repos, owner.ID, "One", nil)
	createArticle(t, repos, owner.ID, "Two", nil)
	createArticle(t, repos, other.ID, "Three", nil)

	var titles []string
	err := repos.Article.StreamByAuthor(ctx, owner.ID, func(a *models.Article) error {
		titles = append(titles, a.Title)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamByAuthor failed: %v", err)
	}
	if len(titles) != 2 {
		t.Errorf("Expected 2 streamed articles, got %v", titles)
	}

	stop := errors.New("stop")
	err = repos.Article.StreamByAuthor(ctx, owner.ID, func(a *models.Article) error { return stop })
	if !errors.Is(err, stop) {
		t.Errorf("Expected callback error to propagate, got %v", err)
	}
}

func TestArticleRepository_DeleteCascades(t *testing.T) {
	repos, db := newStore(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")
	now := time.Now().UTC()
	article := createArticle(t, repos, owner.ID, "Doomed", &now)

	repos.Comment.Create(ctx, &models.Comment{ArticleID: article.ID, CommenterName: "r", Comment: "hi"})
	repos.Like.Add(ctx, &models.Like{ArticleID: article.ID, UserID: owner.ID})
	repos.View.Record(ctx, &models.View{ArticleID: article.ID})

	n, err := repos.Article.Delete(ctx, article.ID, owner.ID)
	if err != nil || n != 1 {
		t.Fatalf("Expected 1 row deleted, got %d (%v)", n, err)
	}

	comments := testutil.CountRows(t, db, "comments", nil)
	likes, _ := repos.Like.CountByArticle(ctx, article.ID)
	views := testutil.CountRows(t, db, "views", sq.Eq{"article_id": article.ID})
	if comments != 0 || likes != 0 || views != 0 {
		t.Errorf("Expected dependents removed, got comments=%d likes=%d views=%d", comments, likes, views)
	}
}

func TestCommentRepository_NewestFirst(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")
	now := time.Now().UTC()
	article := createArticle(t, repos, owner.ID, "Post", &now)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		c := &models.Comment{ArticleID: article.ID, CommenterName: "reader", Comment: text, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := repos.Comment.Create(ctx, c); err != nil {
			t.Fatalf("Create comment failed: %v", err)
		}
	}

	comments, err := repos.Comment.ListByArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("ListByArticle failed: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("Expected 3 comments, got %d", len(comments))
	}
	if comments[0].Comment != "third" || comments[2].Comment != "first" {
		t.Errorf("Expected newest first, got %s..%s", comments[0].Comment, comments[2].Comment)
	}
}

func TestLikeRepository_AtMostOncePerUser(t *testing.T) {
	repos, db := newStore(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")
	reader := createUser(t, repos, "Reader", "reader@example.com")
	now := time.Now().UTC()
	article := createArticle(t, repos, owner.ID, "Post", &now)

	added, err := repos.Like.Add(ctx, &models.Like{ArticleID: article.ID, UserID: reader.ID})
	if err != nil || !added {
		t.Fatalf("Expected first like to be added, got %v (%v)", added, err)
	}

	added, err = repos.Like.Add(ctx, &models.Like{ArticleID: article.ID, UserID: reader.ID})
	if err != nil {
		t.Fatalf("Repeat like should not error: %v", err)
	}
	if added {
		t.Error("Repeat like should not be added")
	}

	count, _ := repos.Like.CountByArticle(ctx, article.ID)
	if count != 1 {
		t.Errorf("Expected 1 like, got %d", count)
	}
	if n := testutil.CountRows(t, db, "likes", sq.Eq{"article_id": article.ID, "user_id": reader.ID}); n != 1 {
		t.Errorf("Expected the reader's like to exist, got %d rows", n)
	}
}

func TestViewRepository_RecordBumpsCounter(t *testing.T) {
	repos, db := newStore(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")
	now := time.Now().UTC()
	article := createArticle(t, repos, owner.ID, "Post", &now)

	if err := repos.View.Record(ctx, &models.View{ArticleID: article.ID}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := repos.View.Record(ctx, &models.View{ArticleID: article.ID, UserID: &owner.ID}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, _ := repos.Article.GetByIDAndAuthor(ctx, article.ID, owner.ID)
	if got.Views != 2 {
		t.Errorf("Expected views counter 2, got %d", got.Views)
	}
	if rows := testutil.CountRows(t, db, "views", sq.Eq{"article_id": article.ID}); rows != 2 {
		t.Errorf("Expected 2 view rows, got %d", rows)
	}
}

func TestViewRepository_UnknownArticleRollsBack(t *testing.T) {
	repos, db := newStore(t)
	ctx := context.Background()

	err := repos.View.Record(ctx, &models.View{ArticleID: 4242})
	if err == nil {
		t.Fatal("Expected foreign key failure for unknown article")
	}
	if rows := testutil.CountRows(t, db, "views", sq.Eq{"article_id": 4242}); rows != 0 {
		t.Errorf("Expected no view rows after rollback, got %d", rows)
	}
}

func TestSettingsRepository_Upsert(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	owner := createUser(t, repos, "Owner", "owner@example.com")

	missing, err := repos.Settings.GetByAuthor(ctx, owner.ID)
	if err != nil || missing != nil {
		t.Fatalf("Expected no settings yet, got %+v (%v)", missing, err)
	}

	first := &models.Settings{AuthorID: owner.ID, BlogTitle: "My Blog", AuthorName: "Me"}
	if err := repos.Settings.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	second := &models.Settings{AuthorID: owner.ID, BlogTitle: "Renamed", AuthorName: "Still Me"}
	if err := repos.Settings.Upsert(ctx, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected upsert to keep one row, got ids %d and %d", first.ID, second.ID)
	}

	stored, _ := repos.Settings.GetByAuthor(ctx, owner.ID)
	if stored.BlogTitle != "Renamed" || stored.AuthorName != "Still Me" {
		t.Errorf("Expected latest values, got %+v", stored)
	}
}

func TestArticleRepository_PostgresPlaceholders(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer sqlDB.Close()

	db := database.Wrap(sqlDB, database.DriverPostgres, zerolog.Nop())
	repo := repository.NewArticleRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET published_at = $1 WHERE article_id = $2 AND author_id = $3 AND published_at IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Publish(context.Background(), 7, 3, time.Now().UTC())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestSettingsRepository_PropagatesDriverErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer sqlDB.Close()

	db := database.Wrap(sqlDB, database.DriverSQLite, zerolog.Nop())
	repo := repository.NewSettingsRepo(db)

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("INSERT INTO settings").WillReturnError(boom)

	err = repo.Upsert(context.Background(), &models.Settings{AuthorID: 1, BlogTitle: "t", AuthorName: "n"})
	if !errors.Is(err, boom) {
		t.Errorf("Expected driver error, got %v", err)
	}
}
