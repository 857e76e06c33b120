package api

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/blogging-tool/internal/auth"
	"github.com/blogging-tool/internal/config"
	"github.com/blogging-tool/internal/observability"
	"github.com/blogging-tool/internal/service"
	"github.com/blogging-tool/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies are the collaborators wired into the handlers
type Dependencies struct {
	Services *service.Services
	Sessions *session.Manager
	Provider auth.Provider // nil disables Google login
	DB       HealthChecker
}

// NewRouter creates and configures the Gin router
func NewRouter(deps Dependencies, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())

	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.Display.Timezone).Msg("Unknown display timezone, using UTC")
		loc = time.UTC
	}
	router.SetHTMLTemplate(loadTemplates(loc))

	// Handlers
	authHandler := NewAuthHandler(deps.Services, deps.Sessions, deps.Provider, log)
	authorHandler := NewAuthorHandler(deps.Services, log)
	exportHandler := NewExportHandler(deps.Services, log)
	readerHandler := NewReaderHandler(deps.Services, log)
	settingsHandler := NewSettingsHandler(deps.Services, log)

	// Operational endpoints stay outside the session
	router.GET("/health", healthCheck(deps.DB))
	router.GET("/metrics", gin.WrapH(observability.Handler()))

	static, _ := fs.Sub(webFS, "web/static")
	public := router.Group("/public", cacheMiddleware(cfg.Server.StaticMaxAge))
	public.StaticFS("/", http.FS(static))

	app := router.Group("/", noStoreMiddleware(), deps.Sessions.Middleware(), currentUserMiddleware(deps.Services, log))
	{
		app.GET("/", home)
		app.GET("/api/user", authHandler.CurrentUser)

		// Local and federated login
		authGroup := app.Group("/auth")
		{
			authGroup.GET("/login", authHandler.LoginPage)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/register", authHandler.RegisterPage)
			authGroup.POST("/register", authHandler.Register)
			authGroup.GET("/logout", authHandler.Logout)
			authGroup.GET("/google", authHandler.GoogleLogin)
			authGroup.GET("/google/callback", authHandler.GoogleCallback)
		}

		// Article lifecycle, owner only
		author := app.Group("/author", requireAuth())
		{
			author.GET("", authorHandler.Dashboard)
			author.POST("/create-draft", authorHandler.CreateDraft)
			author.GET("/edit/:id", authorHandler.EditPage)
			author.POST("/edit/:id", authorHandler.Edit)
			author.POST("/publish/:id", authorHandler.Publish)
			author.POST("/delete/:id", authorHandler.Delete)
			author.GET("/export", exportHandler.StreamExport)
		}

		reader := app.Group("/reader")
		{
			reader.GET("", readerHandler.List)
			reader.GET("/article/:id", readerHandler.View)
			reader.POST("/article/:id/like", readerHandler.Like)
			reader.POST("/article/:id/comment", readerHandler.Comment)
		}

		settings := app.Group("/settings", requireAuth())
		{
			settings.GET("", settingsHandler.Page)
			settings.POST("", settingsHandler.Save)
		}
	}

	return router
}

// home renders the landing page
func home(c *gin.Context) {
	render(c, http.StatusOK, "home.html", nil)
}

// healthCheck returns the health status
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if db != nil {
			ctx, cancel := contextWithTimeout(c, 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "blogging-tool",
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.String(http.StatusInternalServerError, "Internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// metricsMiddleware records request counts and latency per route
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		observability.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), start)
	}
}

// noStoreMiddleware keeps dynamic pages out of shared caches
func noStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// cacheMiddleware marks static assets as cacheable for maxAge
func cacheMiddleware(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", int64(maxAge.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
