package database

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolConfig holds PostgreSQL connection pool settings.
type PoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPoolConfig returns sensible default pool settings.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:          25,
		MinConns:          5,
		MaxConnLifetime:   1 * time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 1 * time.Minute,
	}
}

// PoolConfigFrom derives pool settings from the application database configuration.
func PoolConfigFrom(cfg config.DatabaseConfig) PoolConfig {
	poolCfg := DefaultPoolConfig()
	poolCfg.MaxConns = int32(cfg.MaxConnections)
	poolCfg.MinConns = int32(cfg.MinConnections)
	poolCfg.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	return poolCfg
}

// NewPool creates a new PostgreSQL connection pool and verifies connectivity.
func NewPool(ctx context.Context, connString string, poolCfg PoolConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	pgxConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pgxConfig.MaxConns = poolCfg.MaxConns
	pgxConfig.MinConns = poolCfg.MinConns
	pgxConfig.MaxConnLifetime = poolCfg.MaxConnLifetime
	pgxConfig.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	pgxConfig.HealthCheckPeriod = poolCfg.HealthCheckPeriod

	logger.Info().
		Str("host", pgxConfig.ConnConfig.Host).
		Uint16("port", pgxConfig.ConnConfig.Port).
		Str("database", pgxConfig.ConnConfig.Database).
		Int32("max_connections", poolCfg.MaxConns).
		Int32("min_connections", poolCfg.MinConns).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}
