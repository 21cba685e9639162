// Package main runs the scry-srs review server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	flag "github.com/spf13/pflag"
)

// cliOptions holds the parsed command line.
type cliOptions struct {
	configFile    string
	migrate       string
	migrationName string
	verbose       bool
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("scry-server", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.migrate, "migrate", "",
		"run a migration command and exit: up, down, status, version or create")
	fs.StringVar(&opts.migrationName, "migration-name", "", "name of the migration for --migrate=create")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log every migration statement")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if opts.migrate == migrateCreate && opts.migrationName == "" {
		return cliOptions{}, fmt.Errorf("--migration-name is required with --migrate=%s", migrateCreate)
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithOptions(config.Options{ConfigFile: opts.configFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("review_timezone", cfg.Review.Timezone))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if opts.migrate != "" {
		defer func() { _ = db.Close() }()
		return runMigrations(ctx, db, cfg.Database.Driver, opts.migrate, opts.migrationName, opts.verbose, log)
	}

	if err := applyMigrations(ctx, db, cfg.Database.Driver, opts.verbose, log); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
