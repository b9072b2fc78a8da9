package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines catalogue reads.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.ProductView, error)

	// GetByID retrieves a single active product by ID.
	GetByID(ctx context.Context, id string) (*model.ProductView, error)
}

// ReconcilePolicy selects which cart lines Reconcile evicts.
type ReconcilePolicy int

const (
	// EvictUnavailable removes lines whose product is gone, inactive, or
	// short of the requested quantity.
	EvictUnavailable ReconcilePolicy = iota

	// EvictInactive removes only lines whose product is gone or inactive.
	// Understocked lines stay so checkout can report them.
	EvictInactive
)

// ReconciledCart is a cart after eviction.
type ReconciledCart struct {
	Items   []model.CartItem
	Removed []model.LineIssue
}

// CartService defines cart operations.
type CartService interface {
	// Reconcile loads the cart, deletes lines the policy rejects and
	// returns the survivors.
	Reconcile(ctx context.Context, userID uuid.UUID, policy ReconcilePolicy) (*ReconciledCart, error)

	// View returns the reconciled cart with totals.
	View(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)

	// Summary returns the reconciled cart totals without lines.
	Summary(ctx context.Context, userID uuid.UUID) (*model.CartSummary, error)

	// Validate reports whether the cart can be checked out as is.
	Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error)

	// AddItem adds a product, merging into an existing line.
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.AddToCartResult, error)

	// UpdateQuantity replaces the quantity of a line.
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartItem, error)

	// RemoveItem deletes one line.
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error

	// Clear deletes every line and returns how many were removed.
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

// OrderService defines order placement and the order lifecycle.
type OrderService interface {
	// CreateOrder turns the user's cart into a pending order, reserving
	// stock for every line.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error)

	// GetOrder returns one of the user's orders.
	GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*model.Order, error)

	// ListOrders returns a page of the user's orders.
	ListOrders(ctx context.Context, userID uuid.UUID, filter model.OrderListFilter) (*model.OrderPage, error)

	// CancelOrder cancels one of the user's orders and restores its stock.
	CancelOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*model.Order, error)

	// ListAllOrders returns a page of orders across all customers.
	ListAllOrders(ctx context.Context, filter model.OrderListFilter) (*model.OrderPage, error)

	// GetOrderByNumber returns any order.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// UpdateStatus moves any order along the status graph.
	UpdateStatus(ctx context.Context, orderNumber string, req *model.UpdateStatusRequest) (*model.StatusChange, error)

	// BulkUpdateStatus moves every listed order or none of them.
	BulkUpdateStatus(ctx context.Context, req *model.BulkUpdateStatusRequest) (*model.BulkUpdateResult, error)
}

// WishlistService defines wishlist operations.
type WishlistService interface {
	// List returns the wishlist after evicting entries that cannot be bought.
	List(ctx context.Context, userID uuid.UUID) (*model.WishlistResponse, error)

	// Add saves an active product.
	Add(ctx context.Context, userID uuid.UUID, productID string) (*model.WishlistItem, error)

	// Remove deletes one entry.
	Remove(ctx context.Context, userID, itemID uuid.UUID) error

	// RemoveByProduct deletes the entry for a product.
	RemoveByProduct(ctx context.Context, userID uuid.UUID, productID string) error

	// Clear deletes every entry and returns how many were removed.
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)

	// Check reports whether the product is saved.
	Check(ctx context.Context, userID uuid.UUID, productID string) (bool, error)

	// MoveToCart moves an entry into the cart. It reports false, changing
	// nothing, when the product cannot cover the resulting cart quantity.
	MoveToCart(ctx context.Context, userID, itemID uuid.UUID, quantity int) (bool, error)
}

// UserService defines account administration.
type UserService interface {
	// CheckActive returns ErrUserNotFound for an unknown account and
	// ErrUserInactive for a deactivated one.
	CheckActive(ctx context.Context, userID uuid.UUID) error

	// DeleteUser removes an account, or deactivates it when orders
	// reference it.
	DeleteUser(ctx context.Context, userID uuid.UUID) (model.DeleteOutcome, error)
}
