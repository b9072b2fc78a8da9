package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's cart. The product is joined live, so the
// line always reflects current price and availability.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Product is nil when the referenced product no longer exists.
	Product *Product `json:"product,omitempty"`
}

// Subtotal returns quantity times the live effective price.
func (c *CartItem) Subtotal() decimal.Decimal {
	if c.Product == nil {
		return decimal.Zero
	}
	return c.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// IsAvailable reports whether the product still exists, is active and covers
// the requested quantity.
func (c *CartItem) IsAvailable() bool {
	return c.Product != nil && c.Product.IsAvailable(c.Quantity)
}

// IsActive reports whether the backing product exists and is active,
// regardless of stock.
func (c *CartItem) IsActive() bool {
	return c.Product != nil && c.Product.IsActive
}

// CartTotals aggregates a set of cart lines.
type CartTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"itemCount"`
	ItemsTotal int             `json:"itemsTotal"`
}

// SumCart computes totals over the given lines.
func SumCart(items []CartItem) CartTotals {
	subtotal := decimal.Zero
	count := 0
	for i := range items {
		subtotal = subtotal.Add(items[i].Subtotal())
		count += items[i].Quantity
	}
	return CartTotals{
		Subtotal:   subtotal,
		Total:      subtotal,
		ItemCount:  count,
		ItemsTotal: len(items),
	}
}

// CartResponse is the payload of a cart view.
type CartResponse struct {
	Items                   []CartItem `json:"items"`
	Totals                  CartTotals `json:"totals"`
	UnavailableItemsRemoved int        `json:"unavailableItemsRemoved"`
}

// CartValidation reports whether a cart can be checked out as is.
type CartValidation struct {
	Valid        bool        `json:"valid"`
	ValidItems   []CartItem  `json:"validItems"`
	InvalidItems []LineIssue `json:"invalidItems"`
	Totals       CartTotals  `json:"totals"`
}

// AddToCartRequest is the payload for adding a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// Validate checks the payload. An out-of-range quantity is reported as
// ErrInvalidQuantity rather than a field error.
func (r *AddToCartRequest) Validate() error {
	if err := validateStruct(r, ""); err != nil {
		return err
	}
	return ValidateCartQuantity(r.Quantity)
}

// UpdateCartItemRequest is the payload for changing a line quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartAction tells whether an add created a new line or merged into one.
type CartAction string

const (
	CartActionAdded   CartAction = "added"
	CartActionUpdated CartAction = "updated"
)

// AddToCartResult is returned by a successful add.
type AddToCartResult struct {
	Item   CartItem   `json:"cartItem"`
	Action CartAction `json:"action"`
}

// MaxCartQuantity bounds a single add or update request.
const MaxCartQuantity = 100

// CartSummary is the lightweight cart header: totals without the lines.
type CartSummary struct {
	CartTotals
	UnavailableItemsRemoved int `json:"unavailableItemsRemoved"`
}
