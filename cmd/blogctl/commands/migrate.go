package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var target int

// migrateCmd groups the schema commands
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run the embedded database migrations for the configured driver.

Subcommands:
  up      - Apply pending migrations
  down    - Rollback the last migration
  version - Show the current schema version`,
}

// migrateUpCmd applies pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations.

Examples:
  blogctl migrate up                  # Apply all pending migrations
  blogctl migrate up --to 1           # Migrate up or down to version 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd)
	},
}

// migrateDownCmd rolls back one migration
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateDown(cmd)
	},
}

// migrateVersionCmd prints the schema version
var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateVersion(cmd)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)

	migrateUpCmd.Flags().IntVar(&target, "to", -1, "Migrate to a specific version instead of the latest")
}

func runMigrateUp(cmd *cobra.Command) error {
	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if target >= 0 {
		if err := db.MigrateToVersion(uint(target)); err != nil {
			return err
		}
	} else if err := db.RunMigrations(); err != nil {
		return err
	}
	return printVersion(cmd, db)
}

func runMigrateDown(cmd *cobra.Command) error {
	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.MigrateDown(); err != nil {
		return err
	}
	return printVersion(cmd, db)
}

func runMigrateVersion(cmd *cobra.Command) error {
	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	return printVersion(cmd, db)
}

type versioner interface {
	Version() (uint, bool, error)
}

func printVersion(cmd *cobra.Command, db versioner) error {
	version, dirty, err := db.Version()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if version == 0 {
		fmt.Fprintln(out, "No migrations applied")
		return nil
	}
	if dirty {
		fmt.Fprintf(out, "Schema version: %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(out, "Schema version: %d\n", version)
	return nil
}
