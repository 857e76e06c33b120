package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/blogging-tool/internal/config"
	"github.com/blogging-tool/internal/server"
	"github.com/blogging-tool/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.FromEnv()
	log.Info().Msg("Starting blogging tool server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.New(logger.Options{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Server.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		srv.Close()
		os.Exit(1)
	}

	if err := srv.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close connections")
	}
}
