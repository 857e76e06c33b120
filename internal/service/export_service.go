package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/repository"
	"github.com/rs/zerolog"
)

// Supported export formats
const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatCSV    = "csv"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamArticles streams the author's articles, drafts included, in the specified format
func (s *exportService) StreamArticles(ctx context.Context, w http.ResponseWriter, authorID int64, format string) error {
	if authorID == 0 {
		return ErrUnauthorized
	}

	s.log.Info().Int64("author_id", authorID).Str("format", format).Msg("Starting articles export")

	switch format {
	case FormatNDJSON:
		return s.streamNDJSON(ctx, w, authorID)
	case FormatJSON:
		return s.streamJSON(ctx, w, authorID)
	case FormatCSV:
		return s.streamCSV(ctx, w, authorID)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// setExportHeaders marks the response as a file download
func setExportHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
}

// Each format writes its headers and opening bytes only once the first row
// arrives, so a failed query leaves the response untouched for the caller.

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter, authorID int64) error {
	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.Article.StreamByAuthor(ctx, authorID, func(article *models.Article) error {
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		if count == 0 {
			setExportHeaders(w, "application/x-ndjson", "articles.ndjson")
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		setExportHeaders(w, "application/x-ndjson", "articles.ndjson")
		w.WriteHeader(http.StatusOK)
	}

	s.log.Info().Int("count", count).Msg("Articles export completed")
	return nil
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter, authorID int64) error {
	count := 0

	err := s.repos.Article.StreamByAuthor(ctx, authorID, func(article *models.Article) error {
		data, err := json.Marshal(article)
		if err != nil {
			return err
		}
		if count == 0 {
			setExportHeaders(w, "application/json", "articles.json")
			w.Write([]byte("["))
		} else {
			w.Write([]byte(","))
		}
		w.Write(data)
		count++
		return nil
	})
	if err != nil {
		// A truncated array tells the client the export broke off
		return err
	}
	if count == 0 {
		setExportHeaders(w, "application/json", "articles.json")
		w.Write([]byte("["))
	}
	w.Write([]byte("]"))

	s.log.Info().Int("count", count).Msg("Articles export completed")
	return nil
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter, authorID int64) error {
	writer := csv.NewWriter(w)
	header := []string{"article_id", "title", "content", "created_at", "updated_at", "published_at", "views"}
	count := 0

	err := s.repos.Article.StreamByAuthor(ctx, authorID, func(article *models.Article) error {
		if count == 0 {
			setExportHeaders(w, "text/csv", "articles.csv")
			if err := writer.Write(header); err != nil {
				return err
			}
		}
		count++

		publishedAt := ""
		if article.PublishedAt != nil {
			publishedAt = article.PublishedAt.UTC().Format(time.RFC3339)
		}
		return writer.Write([]string{
			strconv.FormatInt(article.ID, 10),
			article.Title,
			article.Content,
			article.CreatedAt.UTC().Format(time.RFC3339),
			article.UpdatedAt.UTC().Format(time.RFC3339),
			publishedAt,
			strconv.FormatInt(article.Views, 10),
		})
	})
	if err != nil {
		if count > 0 {
			writer.Flush()
		}
		return err
	}
	if count == 0 {
		setExportHeaders(w, "text/csv", "articles.csv")
		writer.Write(header)
	}
	writer.Flush()

	s.log.Info().Int("count", count).Msg("Articles export completed")
	return writer.Error()
}
