package api

import (
	"net/http"

	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/service"
	"github.com/blogging-tool/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SettingsHandler handles the per-author blog settings
type SettingsHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(services *service.Services, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		services: services,
		log:      log.With().Str("handler", "settings").Logger(),
	}
}

// Page handles GET /settings
func (h *SettingsHandler) Page(c *gin.Context) {
	settings, err := h.services.Settings.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		handleError(c, h.log, err, "Failed to load settings")
		return
	}
	render(c, http.StatusOK, "settings.html", gin.H{"settings": settings})
}

// Save handles POST /settings
func (h *SettingsHandler) Save(c *gin.Context) {
	var form validation.SettingsForm
	if !bindForm(c, &form) {
		return
	}

	authorID := currentUserID(c)
	if _, err := h.services.Settings.Save(c.Request.Context(), authorID, &form); err != nil {
		if errs, ok := service.ValidationErrors(err); ok {
			render(c, http.StatusBadRequest, "settings.html", gin.H{
				"settings": &models.Settings{AuthorID: authorID, BlogTitle: form.BlogTitle, AuthorName: form.AuthorName},
				"errors":   errs,
			})
			return
		}
		handleError(c, h.log, err, "Failed to save settings")
		return
	}
	c.Redirect(http.StatusFound, "/author")
}
