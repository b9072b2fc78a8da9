package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, price, sale_price, stock_quantity, is_active, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.SalePrice,
		&p.StockQuantity,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *productRepository) queryProducts(ctx context.Context, q Querier, query string, args ...any) ([]model.Product, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetAll retrieves active products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	products, err := r.queryProducts(ctx, r.pool, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, err
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`

	return r.queryProducts(ctx, r.pool, query, ids)
}

// LockForUpdate locks the given product rows in ID order. Taking the locks in
// a fixed order keeps two checkouts over the same products from deadlocking.
func (r *productRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, ids []string) (map[string]model.Product, error) {
	locked := make(map[string]model.Product, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	products, err := r.queryProducts(ctx, tx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return nil, err
	}
	for _, p := range products {
		locked[p.ID] = p
	}

	r.logger.Debug().
		Int("requested", len(ids)).
		Int("locked", len(locked)).
		Msg("product rows locked")

	return locked, nil
}

// Reserve decrements stock iff at least quantity units remain. The condition
// and the decrement are one statement, so concurrent reservations can never
// jointly overdraw a product.
func (r *productRepository) Reserve(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, model.ErrInvalidQuantity
	}

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id).
			Int("quantity", quantity).
			Msg("failed to reserve stock")
		return false, fmt.Errorf("failed to reserve stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", id).
			Int("quantity", quantity).
			Msg("stock reservation refused")
		return false, nil
	}

	r.logger.Debug().
		Str("product_id", id).
		Int("quantity", quantity).
		Msg("stock reserved")

	return true, nil
}

// Release increments stock unconditionally.
func (r *productRepository) Release(ctx context.Context, tx pgx.Tx, id string, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id).
			Int("quantity", quantity).
			Msg("failed to release stock")
		return fmt.Errorf("failed to release stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("product_id", id).Msg("release for unknown product")
		return model.ErrProductNotFound
	}

	r.logger.Debug().
		Str("product_id", id).
		Int("quantity", quantity).
		Msg("stock released")

	return nil
}
