package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/blogging-tool/internal/server"
	"github.com/spf13/cobra"
)

var port string

// serveCmd starts the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the web server after applying pending migrations.

Examples:
  blogctl serve                       # Listen on PORT (default 3000)
  blogctl serve --port 8080           # Override the port`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on")
}

func runServe(cmd *cobra.Command) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Run(ctx)
}
