package integration

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"product-catalog/internal/app"
	"product-catalog/internal/config"
	"product-catalog/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// TestServer is a running catalogue backed by a real database.
type TestServer struct {
	Server *httptest.Server
	App    *app.App
	reset  func(t *testing.T)
}

// URL returns the absolute URL for path.
func (s *TestServer) URL(path string) string {
	return s.Server.URL + path
}

// Reset empties the products table and restarts ID generation.
func (s *TestServer) Reset(t *testing.T) {
	t.Helper()
	s.reset(t)
}

// Browser returns an HTTP client that keeps cookies and follows redirects.
func (s *TestServer) Browser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func baseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Logger: config.LoggerConfig{Level: "error", Format: "json"},
		Session: config.SessionConfig{
			Driver:     config.SessionMemory,
			CookieName: "catalog_session",
			TTL:        time.Hour,
		},
	}
}

func startServer(t *testing.T, cfg *config.Config, reset func(t *testing.T)) *TestServer {
	t.Helper()

	require.NoError(t, cfg.Validate())

	application, err := app.New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		server.Close()
		application.Close()
	})

	return &TestServer{Server: server, App: application, reset: reset}
}

// SetupPostgresServer starts a PostgreSQL container and serves the catalogue against it.
func SetupPostgresServer(t *testing.T) *TestServer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := baseConfig()
	cfg.Database = config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            portNum,
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
		AutoMigrate:     true,
	}

	server := startServer(t, cfg, nil)

	pool, err := database.NewPool(ctx, cfg.Database.ConnectionString(), database.DefaultPoolConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	server.reset = func(t *testing.T) { CleanupDB(t, pool) }
	return server
}

// SetupSQLiteServer serves the catalogue against a temporary SQLite file.
func SetupSQLiteServer(t *testing.T) *TestServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")

	cfg := baseConfig()
	cfg.Database = config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		SQLitePath:  path,
		AutoMigrate: true,
	}

	server := startServer(t, cfg, nil)

	db, err := database.OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseSQLite(db) })

	server.reset = func(t *testing.T) { CleanupSQLite(t, db) }
	return server
}

// CleanupDB removes all products and restarts the ID sequence.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE products RESTART IDENTITY")
	require.NoError(t, err, "failed to clean products table")
}

// CleanupSQLite removes all products and resets the autoincrement counter.
func CleanupSQLite(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Exec("DELETE FROM products").Error)
	// sqlite_sequence only exists once an AUTOINCREMENT table has been written to.
	_ = db.Exec("DELETE FROM sqlite_sequence WHERE name = 'products'").Error
}

// backends lists the storage drivers every suite runs against.
var backends = []struct {
	name  string
	setup func(t *testing.T) *TestServer
}{
	{name: "sqlite", setup: SetupSQLiteServer},
	{name: "postgres", setup: SetupPostgresServer},
}
