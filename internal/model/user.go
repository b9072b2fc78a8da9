package model

import (
	"time"

	"github.com/google/uuid"
)

// User owns carts, wishlists and orders.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// DeleteOutcome tells how an account removal was carried out.
type DeleteOutcome string

const (
	// DeleteOutcomeDeleted means the user and their cart and wishlist are gone.
	DeleteOutcomeDeleted DeleteOutcome = "deleted"
	// DeleteOutcomeDeactivated means the user has orders and was only disabled.
	DeleteOutcomeDeactivated DeleteOutcome = "deactivated"
)
