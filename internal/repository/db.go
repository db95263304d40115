package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	// database/sql drivers: "sqlite" (modernc, CGO-free) and "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/olamide-oso/docfields/internal/common"
)

// Open connects the run-history store. Driver "sqlite" (default) keeps
// history in a local file (or memory); "postgres" uses a pgx DSN.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := cfg.Driver
	dsn := cfg.DSN
	switch driver {
	case "", "sqlite":
		driver = "sqlite"
		if dsn == "" {
			dsn = "file:docfields.db"
		}
	case "postgres":
		driver = "pgx"
		if dsn == "" {
			return nil, common.NewAppError(common.CodeConfig, "DB_URL is required for postgres", common.ErrInvalidInput)
		}
	default:
		return nil, common.NewAppError(common.CodeConfig, "unknown DB_DRIVER "+cfg.Driver, common.ErrInvalidInput)
	}

	logger.Info("connecting to database", "driver", driver)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "open database", err)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("failed to ping database", "error", err)
		return nil, common.NewAppError(common.CodeDatabase, "ping database", err)
	}

	logger.Info("successfully connected to database")
	return db, nil
}

// Close closes the database connection gracefully
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database connection closed")
}

// HealthCheck pings the store to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
