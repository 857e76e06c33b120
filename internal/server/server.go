// Package server wires configuration, storage, sessions and the router into
// a runnable HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/blogging-tool/internal/api"
	"github.com/blogging-tool/internal/auth"
	"github.com/blogging-tool/internal/config"
	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/internal/repository"
	"github.com/blogging-tool/internal/service"
	"github.com/blogging-tool/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Server owns the HTTP server and the connections behind it
type Server struct {
	cfg   *config.Config
	http  *http.Server
	db    *database.DB
	redis *redis.Client
	log   zerolog.Logger

	// stopSweeper ends the memory store's expiry sweep; nil for redis
	stopSweeper func()
}

// New opens the database, applies migrations and builds the router
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	s := &Server{cfg: cfg, db: db, log: log}

	store, err := s.sessionStore(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories and services
	repos := repository.New(db)
	services := service.NewServices(repos, log)

	sessions := session.NewManager(store, session.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.IsProduction(),
	}, log)

	var provider auth.Provider
	if cfg.OAuth.GoogleEnabled() {
		provider = auth.NewGoogleProvider(cfg.OAuth)
		log.Info().Str("callback", cfg.OAuth.GoogleCallbackURL).Msg("Google login enabled")
	} else {
		log.Info().Msg("Google login disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	// Initialize router
	router := api.NewRouter(api.Dependencies{
		Services: services,
		Sessions: sessions,
		Provider: provider,
		DB:       db,
	}, cfg, log)

	s.http = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}
	return s, nil
}

func (s *Server) sessionStore(ctx context.Context) (session.Store, error) {
	if s.cfg.Session.Store != "redis" {
		store := session.NewMemoryStore()
		s.stopSweeper = store.StartSweeper(s.cfg.Session.SweepInterval, s.log.With().Str("component", "session_store").Logger())
		return store, nil
	}

	client, err := session.NewRedisClient(ctx, s.cfg.Session.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.redis = client
	s.log.Info().Msg("Using redis session store")
	return session.NewRedisStore(client), nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.log.Info().Str("port", s.cfg.Server.Port).Msg("Server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info().Msg("Server exited gracefully")
	return nil
}

// Close releases the database and redis connections
func (s *Server) Close() error {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}

	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}
