// ABOUTME: Long-running subcommands: terminal UI, web frontend and reference backend
// ABOUTME: Each runs until the context is cancelled or the user quits
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/config"
	"github.com/harperreed/smscrm/db"
	"github.com/harperreed/smscrm/devserver"
	"github.com/harperreed/smscrm/tui"
	"github.com/harperreed/smscrm/web"
)

// TUICommand runs the interactive terminal UI.
func TUICommand(ctx context.Context, svc api.LeadService, logger *log.Logger) error {
	return tui.Run(ctx, svc, tui.WithLogger(logger))
}

// WebCommand serves the HTML frontend.
func WebCommand(ctx context.Context, svc api.LeadService, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	port := fs.Int("port", 8080, "Port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server, err := web.NewServer(svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "Starting web UI on http://localhost:%d\n", *port)
	return server.Start(ctx, *port)
}

// DevServerCommand runs the local reference backend on SQLite.
func DevServerCommand(ctx context.Context, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	port := fs.Int("port", 5000, "Port to listen on")
	dbPath := fs.String("db", config.DefaultDevDBPath(), "SQLite database path")
	seed := fs.Bool("seed", false, "Insert sample leads before serving")
	if err := fs.Parse(args); err != nil {
		return err
	}

	database, err := db.OpenDatabase(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()
	logger.Info("devserver database", "path", *dbPath)

	if *seed {
		n, err := devserver.Seed(ctx, db.NewLeadsRepository(database))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "✓ Seeded %d sample lead(s)\n", n)
	}

	return devserver.New(database, logger).Start(ctx, *port)
}
