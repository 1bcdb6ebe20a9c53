package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JhonesBR/go-ledger/internal/config"
)

// NewConnection parses the configured DSN, opens the pool and pings it once.
func NewConnection(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	// Create a new database connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}
	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	// Create a new connection pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database at %s:%s: %w", cfg.DBHost, cfg.DBPort, err)
	}

	slog.Info("Connected to database", "host", cfg.DBHost, "port", cfg.DBPort, "name", cfg.DBName, "max_conns", cfg.DBMaxConns)
	return pool, nil
}
