package repository

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool, zerolog.Nop())
	orders := NewOrderRepository(pool, zerolog.Nop())
	buyer := seedUser(t, pool)
	browser := seedUser(t, pool)
	insertOrder(t, pool, orders, buyer, "ORD-2026-000001", model.OrderStatusPending)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	u, err := repo.GetForUpdate(ctx, tx, buyer)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsActive)

	missing, err := repo.GetForUpdate(ctx, tx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	has, err := repo.HasOrders(ctx, tx, buyer)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasOrders(ctx, tx, browser)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.Deactivate(ctx, tx, buyer))
	require.NoError(t, repo.Delete(ctx, tx, browser))

	assert.ErrorIs(t, repo.Delete(ctx, tx, uuid.New()), model.ErrUserNotFound)
	assert.ErrorIs(t, repo.Deactivate(ctx, tx, uuid.New()), model.ErrUserNotFound)

	u, err = repo.GetForUpdate(ctx, tx, buyer)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	gone, err := repo.GetForUpdate(ctx, tx, browser)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestUserRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool, zerolog.Nop())
	id := seedUser(t, pool)
	ctx := context.Background()

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, id, u.ID)
	assert.True(t, u.IsActive)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
