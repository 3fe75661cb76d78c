package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/plan-parser/internal/common"
	repo "github.com/joseph-ayodele/plan-parser/internal/repository"
)

// ConnectDB opens the job store described by cfg and brings its schema up to date.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repo.DB, error) {
	db, err := repo.Open(ctx, repo.Config{
		DSN:             cfg.DSN,
		SQLitePath:      cfg.SQLitePath,
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.MaxConnLifetime,
		MaxConnIdleTime: cfg.MaxConnIdleTime,
		DialTimeout:     cfg.DialTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		db.Close()
		return nil, err
	}
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repo.DB, timeout time.Duration) error {
	return db.HealthCheck(ctx, timeout)
}
