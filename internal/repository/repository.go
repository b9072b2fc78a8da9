package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines product reads and the stock ledger. Stock only
// changes through Reserve and Release.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// LockForUpdate locks the given product rows in ID order for the rest of
	// the transaction and returns them keyed by ID.
	LockForUpdate(ctx context.Context, tx pgx.Tx, ids []string) (map[string]model.Product, error)

	// Reserve decrements stock iff at least quantity units remain.
	// It reports false, without mutating, when stock is short.
	Reserve(ctx context.Context, tx pgx.Tx, id string, quantity int) (bool, error)

	// Release increments stock unconditionally.
	Release(ctx context.Context, tx pgx.Tx, id string, quantity int) error
}

// CartRepository defines data access for cart lines.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// ListByUser returns every cart line of the user joined with its product.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// GetByID returns one cart line of the user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.CartItem, error)

	// GetByProductForUpdate returns and locks the user's line for a product.
	GetByProductForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productID string) (*model.CartItem, error)

	// Merge inserts a line or adds to the quantity of the existing one and
	// reports whether a row was created. It returns ErrExceedsStock, writing
	// nothing, when the product is inactive or short of the merged quantity.
	Merge(ctx context.Context, tx pgx.Tx, item *model.CartItem) (bool, error)

	// SetQuantity replaces the quantity of a line.
	SetQuantity(ctx context.Context, q Querier, id uuid.UUID, quantity int) error

	// Delete removes one line of the user.
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)

	// DeleteByIDs removes the given lines and returns how many were removed.
	DeleteByIDs(ctx context.Context, q Querier, ids []uuid.UUID) (int64, error)

	// DeleteByUser removes every line of the user.
	DeleteByUser(ctx context.Context, q Querier, userID uuid.UUID) (int64, error)
}

// WishlistRepository defines data access for wishlist entries.
type WishlistRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// ListByUser returns the user's entries joined with their products.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error)

	// GetForUpdate returns and locks one entry of the user.
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*model.WishlistItem, error)

	// Add inserts an entry and reports false when the pair already exists.
	Add(ctx context.Context, item *model.WishlistItem) (bool, error)

	// Exists reports whether the user saved the product.
	Exists(ctx context.Context, userID uuid.UUID, productID string) (bool, error)

	// Delete removes one entry of the user.
	Delete(ctx context.Context, q Querier, userID, id uuid.UUID) (bool, error)

	// DeleteByProduct removes the user's entry for a product.
	DeleteByProduct(ctx context.Context, userID uuid.UUID, productID string) (bool, error)

	// DeleteByIDs removes the given entries.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)

	// DeleteByUser removes every entry of the user.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// It returns ErrDuplicateOrderNumber when the number is already taken.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByNumber retrieves an order by its order number along with its items.
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// GetByNumberForUpdate locks and retrieves an order with its items.
	GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, orderNumber string) (*model.Order, error)

	// GetByIDsForUpdate locks and retrieves the given orders with their items.
	GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Order, error)

	// List returns one page of orders matching the filter and the total count.
	List(ctx context.Context, filter model.OrderListFilter) ([]model.Order, int, error)

	// UpdateStatus sets the status, and the admin notes when non-nil.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, adminNotes *string) error

	// UpdateStatusBulk sets the status of every given order.
	UpdateStatusBulk(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, status model.OrderStatus) (int64, error)
}

// UserRepository defines data access for accounts.
type UserRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetByID returns a user, or nil when none exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetForUpdate locks and returns a user.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.User, error)

	// HasOrders reports whether any order references the user.
	HasOrders(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	// Delete removes the user; cart and wishlist rows cascade.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// Deactivate disables the user without touching dependent rows.
	Deactivate(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}
