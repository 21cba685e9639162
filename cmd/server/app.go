package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
	"github.com/phrazzld/scry-srs/internal/service/auth"
	"github.com/phrazzld/scry-srs/internal/service/review"
	"github.com/phrazzld/scry-srs/internal/store"
)

// application holds the wired dependencies of the server.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sql.DB
	items         store.ItemStore
	jwtService    auth.JWTService
	reviewService review.ReviewService
}

// newApplication wires stores and services on top of an open database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	items, err := newItemStore(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Review.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid review timezone %q: %w", cfg.Review.Timezone, err)
	}

	reviewService := review.NewReviewService(
		items,
		srs.NewDefaultScheduler(),
		logger,
		review.WithLocation(loc),
	)

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		items:         items,
		jwtService:    jwtService,
		reviewService: reviewService,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()
	return app.startHTTPServer(ctx, app.setupRouter())
}

func (app *application) cleanup() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", slog.String("error", err.Error()))
		return
	}
	app.logger.Info("database connection closed")
}
