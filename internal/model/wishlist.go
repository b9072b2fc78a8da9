package model

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem is a product a user saved for later.
type WishlistItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Product *Product `json:"product,omitempty"`
}

// IsProductAvailable reports whether the product exists, is active and has
// any stock at all.
func (w *WishlistItem) IsProductAvailable() bool {
	return w.Product != nil && w.Product.IsActive && w.Product.StockQuantity > 0
}

// WishlistResponse is the payload of a wishlist view.
type WishlistResponse struct {
	Items                   []WishlistItem `json:"items"`
	UnavailableItemsRemoved int            `json:"unavailableItemsRemoved"`
}

// AddToWishlistRequest is the payload for saving a product.
type AddToWishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// Validate checks the payload.
func (r *AddToWishlistRequest) Validate() error {
	return validateStruct(r, "")
}

// MoveToCartRequest is the optional payload of a wishlist move.
type MoveToCartRequest struct {
	Quantity int `json:"quantity"`
}
