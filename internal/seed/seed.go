// Package seed fills a database with demo authors, articles and reader
// activity. It is meant for local development only.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/service"
	"github.com/blogging-tool/internal/validation"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
)

// DefaultPassword is the password of every seeded account
const DefaultPassword = "password123"

// Options controls how much data is generated
type Options struct {
	Authors            int
	ArticlesPerAuthor  int
	DraftsPerAuthor    int
	CommentsPerArticle int
	Password           string
	// Seed makes the generated content reproducible; 0 picks a random one
	Seed int64
}

// DefaultOptions returns a small but browsable data set
func DefaultOptions() Options {
	return Options{
		Authors:            3,
		ArticlesPerAuthor:  4,
		DraftsPerAuthor:    2,
		CommentsPerArticle: 3,
		Password:           DefaultPassword,
	}
}

// Summary counts what a run created
type Summary struct {
	Authors   int
	Published int
	Drafts    int
	Comments  int
	Likes     int
}

// Seeder generates data through the service layer so that every row passes
// the same validation and hashing as user input
type Seeder struct {
	services *service.Services
	faker    *gofakeit.Faker
	opts     Options
	log      zerolog.Logger
}

// New creates a seeder
func New(services *service.Services, opts Options, log zerolog.Logger) *Seeder {
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	return &Seeder{
		services: services,
		faker:    gofakeit.New(opts.Seed),
		opts:     opts,
		log:      log.With().Str("component", "seed").Logger(),
	}
}

// Run creates authors with settings, published articles, drafts, comments and likes
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	var authors []*models.User
	var published []*models.Article

	for i := 0; i < s.opts.Authors; i++ {
		author, err := s.createAuthor(ctx, i)
		if err != nil {
			return summary, err
		}
		authors = append(authors, author)
		summary.Authors++

		for j := 0; j < s.opts.ArticlesPerAuthor; j++ {
			article, err := s.createArticle(ctx, author.ID, true)
			if err != nil {
				return summary, err
			}
			published = append(published, article)
			summary.Published++
		}

		for j := 0; j < s.opts.DraftsPerAuthor; j++ {
			if _, err := s.createArticle(ctx, author.ID, false); err != nil {
				return summary, err
			}
			summary.Drafts++
		}
	}

	for _, article := range published {
		for k := 0; k < s.opts.CommentsPerArticle; k++ {
			_, err := s.services.Reader.Comment(ctx, article.ID, &validation.CommentForm{
				CommenterName: s.faker.Name(),
				Comment:       s.faker.Sentence(s.faker.Number(4, 14)),
			})
			if err != nil {
				return summary, fmt.Errorf("failed to add comment: %w", err)
			}
			summary.Comments++
		}

		for _, reader := range authors {
			if reader.ID == article.AuthorID || !s.faker.Bool() {
				continue
			}
			added, err := s.services.Reader.Like(ctx, article.ID, reader.ID)
			if err != nil {
				return summary, fmt.Errorf("failed to add like: %w", err)
			}
			if added {
				summary.Likes++
			}
		}
	}

	s.log.Info().
		Int("authors", summary.Authors).
		Int("published", summary.Published).
		Int("drafts", summary.Drafts).
		Int("comments", summary.Comments).
		Int("likes", summary.Likes).
		Msg("Seeding completed")

	return summary, nil
}

func (s *Seeder) createAuthor(ctx context.Context, n int) (*models.User, error) {
	first, last := s.faker.FirstName(), s.faker.LastName()
	email := fmt.Sprintf("%s.%s.%d@example.com", localPart(first), localPart(last), n+1)

	user, err := s.services.Auth.Register(ctx, &validation.RegisterForm{
		UserName: first + " " + last,
		Email:    email,
		Password: s.opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", email, err)
	}

	_, err = s.services.Settings.Save(ctx, user.ID, &validation.SettingsForm{
		BlogTitle:  s.faker.Company() + " Journal",
		AuthorName: user.UserName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save settings for %s: %w", email, err)
	}

	s.log.Debug().Int64("user_id", user.ID).Str("email", email).Msg("Seeded author")
	return user, nil
}

func (s *Seeder) createArticle(ctx context.Context, authorID int64, publish bool) (*models.Article, error) {
	article, err := s.services.Article.CreateDraft(ctx, authorID)
	if err != nil {
		return nil, err
	}

	// Some drafts stay untitled, the way a fresh draft looks
	if !publish && s.faker.Bool() {
		return article, nil
	}

	article, err = s.services.Article.Update(ctx, article.ID, authorID, &validation.ArticleForm{
		Title:   strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 7)), "."),
		Content: s.faker.Paragraph(s.faker.Number(2, 4), 4, 12, "\n\n"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write article: %w", err)
	}

	if publish {
		if err := s.services.Article.Publish(ctx, article.ID, authorID); err != nil {
			return nil, fmt.Errorf("failed to publish article: %w", err)
		}
	}
	return article, nil
}

// localPart keeps the ASCII letters of a name, lowercased
func localPart(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "author"
	}
	return b.String()
}
