package database

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway PostgreSQL and returns its settings.
func startPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		Database:        "storefront",
		MaxConnections:  5,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}
}

func TestSchema_DeclaresTables(t *testing.T) {
	for _, table := range []string{"users", "products", "cart_items", "wishlists", "orders", "order_items"} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, Schema(), "stock_quantity >= 0")
}

func TestPoolConfig(t *testing.T) {
	poolConfig, err := PoolConfig(config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "app",
		Password:        "secret",
		Database:        "storefront",
		MaxConnections:  20,
		MinConnections:  4,
		MaxConnLifetime: 120,
	})

	require.NoError(t, err)
	assert.Equal(t, int32(20), poolConfig.MaxConns)
	assert.Equal(t, int32(4), poolConfig.MinConns)
	assert.Equal(t, 2*time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, "db.internal", poolConfig.ConnConfig.Host)
	assert.Equal(t, uint16(5433), poolConfig.ConnConfig.Port)
	assert.Equal(t, "storefront", poolConfig.ConnConfig.Database)
}

func TestNewPool_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := config.DatabaseConfig{
		Host:           "127.0.0.1",
		Port:           1,
		User:           "postgres",
		Database:       "storefront",
		MaxConnections: 2,
		MinConnections: 1,
	}

	pool, err := NewPool(ctx, cfg, zerolog.Nop())

	require.Error(t, err)
	assert.Nil(t, pool)
}

func TestNewPool_AndEnsureSchema(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, int32(5), pool.Config().MaxConns)
	assert.NoError(t, pool.Ping(ctx))

	// applying twice must be harmless
	require.NoError(t, EnsureSchema(ctx, pool, zerolog.Nop()))
	require.NoError(t, EnsureSchema(ctx, pool, zerolog.Nop()))

	var tables int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('users', 'products', 'cart_items', 'wishlists', 'orders', 'order_items')
	`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 6, tables)
}
