package api

import (
	"errors"
	"net/http"

	"github.com/blogging-tool/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const genericErrorMessage = "Something went wrong. Please try again later."

// handleError maps service errors onto pages. Store failures are logged and
// shown as a generic 500.
func handleError(c *gin.Context, log zerolog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		notFound(c)
	case errors.Is(err, service.ErrUnauthorized):
		c.Redirect(http.StatusFound, "/auth/login")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
		renderError(c, http.StatusInternalServerError, genericErrorMessage)
	}
}
