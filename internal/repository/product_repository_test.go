package repository

import (
	"context"
	"testing"
	"time"

	"product-catalog/internal/database"
	"product-catalog/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a migrated PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func TestProductRepository_Postgres(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	runProductRepositoryTests(t, repo, func(t *testing.T) {
		_, err := pool.Exec(context.Background(), "TRUNCATE products RESTART IDENTITY")
		require.NoError(t, err)
	})
}

func TestProductRepository_Postgres_ContextCancelled(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, model.NewProduct{Name: "Late", Price: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// runProductRepositoryTests exercises behaviour every ProductRepository must share.
// reset empties the products table between subtests.
func runProductRepositoryTests(t *testing.T, repo ProductRepository, reset func(t *testing.T)) {
	t.Helper()
	ctx := context.Background()

	t.Run("List on empty table returns empty slice", func(t *testing.T) {
		reset(t)

		products, err := repo.List(ctx)

		require.NoError(t, err)
		require.NotNil(t, products)
		assert.Empty(t, products)
	})

	t.Run("Create returns generated fields", func(t *testing.T) {
		reset(t)
		before := time.Now().Add(-time.Minute)

		product, err := repo.Create(ctx, model.NewProduct{Name: "iPhone 15", Price: 1200})

		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Positive(t, product.ID)
		assert.Equal(t, "iPhone 15", product.Name)
		assert.Equal(t, int64(1200), product.Price)
		assert.True(t, product.CreatedAt.After(before))
		assert.False(t, product.UpdatedAt.Before(product.CreatedAt))
	})

	t.Run("Create accepts negative price and duplicate names", func(t *testing.T) {
		reset(t)

		first, err := repo.Create(ctx, model.NewProduct{Name: "Refund", Price: -500})
		require.NoError(t, err)
		second, err := repo.Create(ctx, model.NewProduct{Name: "Refund", Price: -500})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, int64(-500), second.Price)
	})

	t.Run("List returns products in insertion order", func(t *testing.T) {
		reset(t)

		names := []string{"Zebra", "Apple", "Mango", "Banana"}
		for i, name := range names {
			_, err := repo.Create(ctx, model.NewProduct{Name: name, Price: int64(100 * (i + 1))})
			require.NoError(t, err)
		}

		products, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, products, len(names))
		for i, p := range products {
			assert.Equal(t, names[i], p.Name)
			if i > 0 {
				assert.Greater(t, p.ID, products[i-1].ID)
			}
		}
	})

	t.Run("Ping succeeds", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}
