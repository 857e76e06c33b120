package api

import (
	"net/http"

	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/service"
	"github.com/blogging-tool/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	userKey           = "user"
	publishMessageKey = "publishMessage"
)

// currentUserMiddleware re-reads the session's user on every request and
// exposes it, or the guest placeholder, to handlers and templates. It also
// consumes the one-shot publish message.
func currentUserMiddleware(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "current_user").Logger()

	return func(c *gin.Context) {
		st := session.StateOf(c)
		user := models.Guest()

		if st.Authenticated {
			u, err := services.Auth.UserByID(c.Request.Context(), st.UserID)
			switch {
			case err != nil:
				// The session stays authenticated; the author is not logged out by an outage
				log.Error().Err(err).Int64("user_id", st.UserID).Msg("Failed to load session user")
				c.Set(userKey, user)
				renderError(c, http.StatusInternalServerError, genericErrorMessage)
				c.Abort()
				return
			case u == nil:
				log.Info().Int64("user_id", st.UserID).Msg("Session user no longer exists")
				st.Logout()
			default:
				st.User = u
				user = u
			}
		}

		c.Set(userKey, user)
		c.Set(publishMessageKey, st.PopPublishMessage())
		c.Next()
	}
}

// requireAuth redirects anonymous requests to the login page
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).IsGuest() {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUser returns the request's user; never nil
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok && u != nil {
			return u
		}
	}
	return models.Guest()
}

// currentUserID returns the logged in user's id, or 0 for guests
func currentUserID(c *gin.Context) int64 {
	return currentUser(c).ID
}
