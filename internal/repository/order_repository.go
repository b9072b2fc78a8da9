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

const orderColumns = `id, user_id, order_number, status, total_amount, shipping_address, notes, admin_notes, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNumber,
		&o.Status,
		&o.TotalAmount,
		&o.ShippingAddress,
		&o.Notes,
		&o.AdminNotes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

// CreateOrder inserts a new order within the provided transaction. A taken
// order number does not abort the transaction; the caller can retry with a
// fresh number.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, order_number, status, total_amount, shipping_address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (order_number) DO NOTHING
		RETURNING id
	`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query,
		order.ID,
		order.UserID,
		order.OrderNumber,
		order.Status,
		order.TotalAmount,
		order.ShippingAddress,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn().
				Str("order_number", order.OrderNumber).
				Msg("order number collision")
			return ErrDuplicateOrderNumber
		}
		if IsMissingUser(err) {
			return model.ErrUserNotFound
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price, item.Total)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx, r.pool, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByNumber retrieves an order by its order number along with its items.
func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return r.getOne(ctx, r.pool, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
}

// GetByNumberForUpdate locks and retrieves an order with its items.
func (r *orderRepository) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, orderNumber string) (*model.Order, error) {
	return r.getOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1 FOR UPDATE`, orderNumber)
}

func (r *orderRepository) getOne(ctx context.Context, q Querier, query string, arg any) (*model.Order, error) {
	var order model.Order
	err := scanOrder(q.QueryRow(ctx, query, arg), &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface("key", arg).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.loadItems(ctx, q, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return &order, nil
}

// GetByIDsForUpdate locks and retrieves the given orders with their items.
// Unknown IDs are simply absent from the result.
func (r *orderRepository) GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Order, error) {
	if len(ids) == 0 {
		return []model.Order{}, nil
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	return r.queryOrders(ctx, tx, query, ids)
}

// List returns one page of orders across all users, or of filter.UserID
// when set, newest first, and the total number of matching orders.
func (r *orderRepository) List(ctx context.Context, filter model.OrderListFilter) ([]model.Order, int, error) {
	filter.Normalize()

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	const where = `($1::uuid IS NULL OR user_id = $1) AND ($2::text IS NULL OR status = $2)`

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, filter.UserID, status).Scan(&total)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ` + where + `
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4
	`

	orders, err := r.queryOrders(ctx, r.pool, query, filter.UserID, status, filter.PerPage, filter.Offset())
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, q Querier, query string, args ...any) ([]model.Order, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			rows.Close()
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	items, err := r.loadItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// loadItems fetches the items of the given orders, grouped by order ID.
func (r *orderRepository) loadItems(ctx context.Context, q Querier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	grouped := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}

	query := `
		SELECT id, order_id, product_id, product_name, quantity, price, total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_id
	`

	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(orderIDs)).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Total)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return grouped, nil
}

// UpdateStatus sets the status, and the admin notes when non-nil.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, adminNotes *string) error {
	query := `
		UPDATE orders
		SET status = $2, admin_notes = COALESCE($3, admin_notes), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, status, adminNotes)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// UpdateStatusBulk sets the status of every given order.
func (r *orderRepository) UpdateStatusBulk(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, status model.OrderStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = ANY($1)`,
		ids, status,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int("count", len(ids)).
			Str("status", string(status)).
			Msg("failed to bulk update order status")
		return 0, fmt.Errorf("failed to bulk update order status: %w", err)
	}

	r.logger.Debug().
		Int64("updated", tag.RowsAffected()).
		Str("status", string(status)).
		Msg("orders updated")

	return tag.RowsAffected(), nil
}
