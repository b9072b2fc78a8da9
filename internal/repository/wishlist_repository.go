package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const wishlistSelect = `
	SELECT w.id, w.user_id, w.product_id, w.created_at,
		p.id, p.name, p.price, p.sale_price, p.stock_quantity, p.is_active, p.created_at, p.updated_at
	FROM wishlists w
	JOIN products p ON p.id = w.product_id
`

// wishlistRepository implements the WishlistRepository interface using PostgreSQL.
type wishlistRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool *pgxpool.Pool, logger zerolog.Logger) WishlistRepository {
	return &wishlistRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "wishlist").Logger(),
	}
}

func (r *wishlistRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func scanWishlistItem(row pgx.Row) (*model.WishlistItem, error) {
	var item model.WishlistItem
	var p model.Product
	err := row.Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt,
		&p.ID, &p.Name, &p.Price, &p.SalePrice, &p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Product = &p
	return &item, nil
}

// ListByUser returns the user's entries, newest first.
func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error) {
	query := wishlistSelect + `
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC, w.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query wishlist")
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	defer rows.Close()

	items := []model.WishlistItem{}
	for rows.Next() {
		item, err := scanWishlistItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan wishlist row")
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating wishlist rows")
		return nil, fmt.Errorf("error iterating wishlist: %w", err)
	}

	return items, nil
}

// GetForUpdate returns and locks one entry of the user together with its
// product row.
func (r *wishlistRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*model.WishlistItem, error) {
	query := wishlistSelect + `
		WHERE w.id = $1 AND w.user_id = $2
		FOR UPDATE
	`

	item, err := scanWishlistItem(tx.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("wishlist_item_id", id.String()).Msg("failed to lock wishlist item")
		return nil, fmt.Errorf("failed to lock wishlist item: %w", err)
	}
	return item, nil
}

// Add inserts an entry and reports false when the pair already exists.
func (r *wishlistRepository) Add(ctx context.Context, item *model.WishlistItem) (bool, error) {
	query := `
		INSERT INTO wishlists (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, product_id) DO NOTHING
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, item.ID, item.UserID, item.ProductID).Scan(&item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if IsMissingUser(err) {
			return false, model.ErrUserNotFound
		}
		r.logger.Error().
			Err(err).
			Str("user_id", item.UserID.String()).
			Str("product_id", item.ProductID).
			Msg("failed to add wishlist item")
		return false, fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return true, nil
}

// Exists reports whether the user saved the product.
func (r *wishlistRepository) Exists(ctx context.Context, userID uuid.UUID, productID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM wishlists WHERE user_id = $1 AND product_id = $2)`,
		userID, productID,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to check wishlist")
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return exists, nil
}

// Delete removes one entry of the user.
func (r *wishlistRepository) Delete(ctx context.Context, q Querier, userID, id uuid.UUID) (bool, error) {
	if q == nil {
		q = r.pool
	}

	tag, err := q.Exec(ctx, `DELETE FROM wishlists WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("wishlist_item_id", id.String()).Msg("failed to delete wishlist item")
		return false, fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByProduct removes the user's entry for a product.
func (r *wishlistRepository) DeleteByProduct(ctx context.Context, userID uuid.UUID, productID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to delete wishlist item")
		return false, fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByIDs removes the given entries.
func (r *wishlistRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlists WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete wishlist items")
		return 0, fmt.Errorf("failed to delete wishlist items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByUser removes every entry of the user.
func (r *wishlistRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlists WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear wishlist")
		return 0, fmt.Errorf("failed to clear wishlist: %w", err)
	}
	return tag.RowsAffected(), nil
}
