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

const cartItemSelect = `
	SELECT c.id, c.user_id, c.product_id, c.quantity, c.added_at, c.updated_at,
		p.id, p.name, p.price, p.sale_price, p.stock_quantity, p.is_active, p.created_at, p.updated_at
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
`

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func scanCartItem(row pgx.Row) (*model.CartItem, error) {
	var item model.CartItem
	var p model.Product
	err := row.Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.AddedAt, &item.UpdatedAt,
		&p.ID, &p.Name, &p.Price, &p.SalePrice, &p.StockQuantity, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Product = &p
	return &item, nil
}

// ListByUser returns every cart line of the user joined with its product.
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	query := cartItemSelect + `
		WHERE c.user_id = $1
		ORDER BY c.added_at, c.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// GetByID returns one cart line of the user.
func (r *cartRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.CartItem, error) {
	query := cartItemSelect + `WHERE c.id = $1 AND c.user_id = $2`

	item, err := scanCartItem(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}
	return item, nil
}

// GetByProductForUpdate returns and locks the user's line for a product.
func (r *cartRepository) GetByProductForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productID string) (*model.CartItem, error) {
	query := cartItemSelect + `
		WHERE c.user_id = $1 AND c.product_id = $2
		FOR UPDATE OF c
	`

	item, err := scanCartItem(tx.QueryRow(ctx, query, userID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID).
			Msg("failed to lock cart item")
		return nil, fmt.Errorf("failed to lock cart item: %w", err)
	}
	return item, nil
}

// Merge inserts a line or adds to the quantity of the existing line for the
// same user and product. The write only happens while the product is active
// and the resulting quantity fits its stock, so concurrent adds cannot push
// a line past what is on hand; otherwise ErrExceedsStock is returned. On
// success item holds the stored row.
func (r *cartRepository) Merge(ctx context.Context, tx pgx.Tx, item *model.CartItem) (bool, error) {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, added_at, updated_at)
		SELECT $1, $2, p.id, $4, NOW(), NOW()
		FROM products p
		WHERE p.id = $3 AND p.is_active AND p.stock_quantity >= $4
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		WHERE cart_items.quantity + EXCLUDED.quantity <= (
			SELECT stock_quantity FROM products WHERE id = EXCLUDED.product_id
		)
		RETURNING id, quantity, added_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := tx.QueryRow(ctx, query, item.ID, item.UserID, item.ProductID, item.Quantity).Scan(
		&item.ID,
		&item.Quantity,
		&item.AddedAt,
		&item.UpdatedAt,
		&inserted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("user_id", item.UserID.String()).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("cart merge refused by stock")
			return false, ErrExceedsStock
		}
		if IsMissingUser(err) {
			return false, model.ErrUserNotFound
		}
		r.logger.Error().
			Err(err).
			Str("user_id", item.UserID.String()).
			Str("product_id", item.ProductID).
			Msg("failed to merge cart item")
		return false, fmt.Errorf("failed to merge cart item: %w", err)
	}

	return inserted, nil
}

// SetQuantity replaces the quantity of a line.
func (r *cartRepository) SetQuantity(ctx context.Context, q Querier, id uuid.UUID, quantity int) error {
	if q == nil {
		q = r.pool
	}

	query := `UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}

// Delete removes one line of the user.
func (r *cartRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to delete cart item")
		return false, fmt.Errorf("failed to delete cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByIDs removes the given lines. A nil q runs on the pool.
func (r *cartRepository) DeleteByIDs(ctx context.Context, q Querier, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if q == nil {
		q = r.pool
	}

	tag, err := q.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete cart items")
		return 0, fmt.Errorf("failed to delete cart items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByUser removes every line of the user.
func (r *cartRepository) DeleteByUser(ctx context.Context, q Querier, userID uuid.UUID) (int64, error) {
	if q == nil {
		q = r.pool
	}

	tag, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Int64("removed", tag.RowsAffected()).
		Msg("cart cleared")

	return tag.RowsAffected(), nil
}
