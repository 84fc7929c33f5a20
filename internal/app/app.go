// Package app wires configuration, storage, sessions and HTTP handlers into a runnable
// application.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/handler"
	"product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/router"
	"product-catalog/internal/service"
	"product-catalog/internal/session"
	"product-catalog/internal/validation"

	"github.com/rs/zerolog"
)

// limiterCleanupInterval is how often idle per-client rate limiters are dropped.
const limiterCleanupInterval = 5 * time.Minute

// App holds the long-lived dependencies of the service.
type App struct {
	cfg      *config.Config
	logger   zerolog.Logger
	repo     repository.ProductRepository
	sessions *session.Manager
	handler  http.Handler
	closers  []func()
}

// New opens storage and the session store and builds the HTTP handler.
// The caller must call Close when done.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	repo, err := a.openRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo = repo

	store, err := a.openSessionStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sessions = session.NewManager(store, cfg.Session, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
		cleanupCtx, cancel := context.WithCancel(context.Background())
		limiter.StartCleanup(cleanupCtx, limiterCleanupInterval)
		a.closers = append(a.closers, cancel)
	}

	productService := service.NewProductService(repo, logger)
	validator := validation.New()

	a.handler = router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, validator, logger),
		Form:    handler.NewFormHandler(productService, validator, a.sessions, logger),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": productService,
			"session":  a.sessions,
		}, logger),
	}, limiter, logger)

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Repository returns the product repository.
func (a *App) Repository() repository.ProductRepository {
	return a.repo
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openRepository(ctx context.Context) (repository.ProductRepository, error) {
	switch a.cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(a.cfg.Database.SQLitePath, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := database.CloseSQLite(db); err != nil {
				a.logger.Error().Err(err).Msg("failed to close sqlite database")
			}
		})

		if a.cfg.Database.AutoMigrate {
			if err := database.MigrateSQLite(db, a.logger); err != nil {
				return nil, err
			}
		}
		return repository.NewGormProductRepository(db, a.logger), nil

	default:
		connString := a.cfg.Database.ConnectionString()

		if a.cfg.Database.AutoMigrate {
			if err := database.Migrate(connString, a.logger); err != nil {
				return nil, err
			}
		}

		pool, err := database.NewPool(ctx, connString, database.PoolConfigFrom(a.cfg.Database), a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		return repository.NewProductRepository(pool, a.logger), nil
	}
}

func (a *App) openSessionStore(ctx context.Context) (session.Store, error) {
	if a.cfg.Session.Driver != config.SessionRedis {
		return session.NewMemoryStore(), nil
	}

	client, err := session.NewRedisClient(ctx, a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			a.logger.Error().Err(err).Msg("failed to close redis client")
		}
	})

	a.logger.Info().Str("addr", a.cfg.Redis.Addr).Msg("using redis session store")
	return session.NewRedisStore(client), nil
}

// Migrate applies (or, with down, reverts) the schema for the configured driver.
func Migrate(cfg *config.Config, logger zerolog.Logger, down bool) error {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		if down {
			return fmt.Errorf("rollback is not supported for the sqlite driver")
		}
		db, err := database.OpenSQLite(cfg.Database.SQLitePath, logger)
		if err != nil {
			return err
		}
		defer database.CloseSQLite(db)
		return database.MigrateSQLite(db, logger)

	default:
		if down {
			return database.Rollback(cfg.Database.ConnectionString(), logger)
		}
		return database.Migrate(cfg.Database.ConnectionString(), logger)
	}
}
