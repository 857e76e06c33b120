package api

import (
	"errors"
	"net/http"

	"github.com/blogging-tool/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /author/export?format=...
// Streams the author's own articles directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	format := c.Query("format")
	if format == "" {
		format = service.FormatNDJSON // Default to NDJSON for streaming
	}
	if format != service.FormatNDJSON && format != service.FormatJSON && format != service.FormatCSV {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json, csv"})
		return
	}

	authorID := currentUserID(c)
	h.log.Info().
		Int64("author_id", authorID).
		Str("format", format).
		Msg("Starting streaming export")

	err := h.services.Export.StreamArticles(ctx, c.Writer, authorID, format)
	if err == nil {
		return
	}

	if errors.Is(err, service.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	h.log.Error().Err(err).Int64("author_id", authorID).Msg("Export failed")
	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
	}
	// Can't return error JSON after streaming has started
}
