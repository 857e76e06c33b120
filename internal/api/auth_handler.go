package api

import (
	"errors"
	"net/http"

	"github.com/blogging-tool/internal/auth"
	"github.com/blogging-tool/internal/observability"
	"github.com/blogging-tool/internal/service"
	"github.com/blogging-tool/internal/session"
	"github.com/blogging-tool/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles login, registration, logout and the Google flow
type AuthHandler struct {
	services *service.Services
	sessions *session.Manager
	provider auth.Provider
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, sessions *session.Manager, provider auth.Provider, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		sessions: sessions,
		provider: provider,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// LoginPage handles GET /auth/login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"google": h.provider != nil})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var form validation.LoginForm
	if !bindForm(c, &form) {
		return
	}

	user, err := h.services.Auth.Login(c.Request.Context(), &form)
	if err != nil {
		data := gin.H{"google": h.provider != nil, "email": form.Email}
		if errs, ok := service.ValidationErrors(err); ok {
			data["errors"] = errs
			render(c, http.StatusBadRequest, "login.html", data)
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			data["errors"] = messageErrors("Invalid credentials")
			render(c, http.StatusUnauthorized, "login.html", data)
			return
		}
		handleError(c, h.log, err, "Login failed")
		return
	}

	if err := h.sessions.Renew(c); err != nil {
		h.log.Warn().Err(err).Msg("Failed to drop previous session")
	}
	session.StateOf(c).Login(user)

	h.log.Info().Int64("user_id", user.ID).Msg("User logged in")
	c.Redirect(http.StatusFound, "/author")
}

// RegisterPage handles GET /auth/register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", nil)
}

// Register handles POST /auth/register. It does not log the new user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var form validation.RegisterForm
	if !bindForm(c, &form) {
		return
	}

	_, err := h.services.Auth.Register(c.Request.Context(), &form)
	if err != nil {
		data := gin.H{"userName": form.UserName, "email": form.Email}
		if errs, ok := service.ValidationErrors(err); ok {
			data["errors"] = errs
			render(c, http.StatusBadRequest, "register.html", data)
			return
		}
		if errors.Is(err, service.ErrRegistration) {
			data["errors"] = messageErrors("Error registering user")
			render(c, http.StatusBadRequest, "register.html", data)
			return
		}
		handleError(c, h.log, err, "Registration failed")
		return
	}

	c.Redirect(http.StatusFound, "/auth/login")
}

// Logout handles GET /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		h.log.Error().Err(err).Msg("Failed to destroy session")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Redirect(http.StatusFound, "/auth/login")
}

// GoogleLogin handles GET /auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.provider == nil {
		renderError(c, http.StatusNotFound, "Google login is not configured")
		return
	}

	state := auth.NewState()
	session.StateOf(c).OAuthState = state
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// GoogleCallback handles GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.provider == nil {
		renderError(c, http.StatusNotFound, "Google login is not configured")
		return
	}

	st := session.StateOf(c)
	expected := st.OAuthState
	st.OAuthState = ""

	if reason := c.Query("error"); reason != "" {
		h.fail(c, "Provider refused the login", errors.New(reason))
		return
	}
	if expected == "" || c.Query("state") != expected {
		h.fail(c, "OAuth state mismatch", nil)
		return
	}

	identity, err := h.provider.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.fail(c, "Code exchange failed", err)
		return
	}

	user, err := h.services.Auth.LoginWithIdentity(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, auth.ErrNoEmail) {
			h.fail(c, "Provider returned no email", err)
			return
		}
		handleError(c, h.log, err, "Federated login failed")
		return
	}

	if err := h.sessions.Renew(c); err != nil {
		h.log.Warn().Err(err).Msg("Failed to drop previous session")
	}
	st.Login(user)

	h.log.Info().Int64("user_id", user.ID).Str("provider", h.provider.Name()).Msg("User logged in")
	c.Redirect(http.StatusFound, "/author")
}

func (h *AuthHandler) fail(c *gin.Context, msg string, err error) {
	observability.Logins.WithLabelValues("oauth", "failure").Inc()
	h.log.Warn().Err(err).Msg(msg)
	c.Redirect(http.StatusFound, "/auth/login")
}

// CurrentUser handles GET /api/user
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user := currentUser(c)
	if user.IsGuest() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
