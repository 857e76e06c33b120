// Package commands implements the blogctl command line.
package commands

import (
	"fmt"
	"os"

	"github.com/blogging-tool/internal/config"
	"github.com/blogging-tool/internal/database"
	"github.com/blogging-tool/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbDriver string
	dbPath   string
	dbURL    string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Blogging tool server and maintenance commands",
	Long: `blogctl runs the blogging tool and manages its database.

Configuration is read from the environment and an optional .env file.
The database flags override DB_DRIVER, DB_PATH and DATABASE_URL.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver (sqlite3 or postgres)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Postgres connection URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// loadConfig reads the configuration and applies command line overrides
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	if dbDriver != "" {
		cfg.Database.Driver = dbDriver
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{
		Level:       level,
		Format:      cfg.Log.Format,
		Development: cfg.Server.Env == "development",
	})
	return cfg, log, nil
}

// openDatabase connects using the loaded configuration
func openDatabase() (*database.DB, zerolog.Logger, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, log, err
	}
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, log, err
	}
	return db, log, nil
}
