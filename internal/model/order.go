package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order. TotalAmount is fixed when the order is
// created and is never recomputed from live product prices.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	Status          OrderStatus     `json:"status" db:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	AdminNotes      *string         `json:"adminNotes,omitempty" db:"admin_notes"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`

	Items []OrderItem `json:"items"`
}

// ItemsCount returns the number of units across all items.
func (o *Order) ItemsCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// CanBeCancelled reports whether the order may still be cancelled.
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}

// CalculateTotal sums the item line totals.
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// OrderItem is one product line of an order. Price and ProductName are
// snapshots taken when the order was placed.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Total       decimal.Decimal `json:"total" db:"total"`
}

// LineTotal returns quantity times the captured unit price.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrderItem captures a product line at its current effective price.
func NewOrderItem(orderID uuid.UUID, product *Product, quantity int) OrderItem {
	item := OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.EffectivePrice(),
	}
	item.Total = item.LineTotal()
	return item
}

// ShippingAddress is stored as JSON and never changes after creation.
type ShippingAddress struct {
	Name         string `json:"name" validate:"notblank,max=255"`
	AddressLine1 string `json:"addressLine1" validate:"notblank,max=255"`
	AddressLine2 string `json:"addressLine2,omitempty" validate:"max=255"`
	City         string `json:"city" validate:"notblank,max=100"`
	State        string `json:"state" validate:"notblank,max=100"`
	PostalCode   string `json:"postalCode" validate:"notblank,max=20"`
	Country      string `json:"country" validate:"notblank,max=100"`
	Phone        string `json:"phone,omitempty" validate:"max=20"`
}

// Validate checks required fields and length limits.
func (a ShippingAddress) Validate() error {
	return validateStruct(a, "shippingAddress")
}

// Format renders the address on one line, skipping empty parts.
func (a ShippingAddress) Format() string {
	parts := make([]string, 0, 7)
	for _, p := range []string{a.Name, a.AddressLine1, a.AddressLine2, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// MaxNotesLength bounds customer and admin notes.
const MaxNotesLength = 1000

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Notes           *string         `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Validate checks the checkout payload.
func (r *CreateOrderRequest) Validate() error {
	return validateStruct(r, "")
}

// UpdateStatusRequest is the admin payload for a single status change.
type UpdateStatusRequest struct {
	Status     OrderStatus `json:"status"`
	AdminNotes *string     `json:"adminNotes,omitempty" validate:"omitempty,max=1000"`
}

// Validate checks the notes; the status is checked against the graph.
func (r *UpdateStatusRequest) Validate() error {
	return validateStruct(r, "")
}

// BulkUpdateStatusRequest is the admin payload for a bulk status change.
type BulkUpdateStatusRequest struct {
	OrderIDs []uuid.UUID `json:"orderIds" validate:"min=1"`
	Status   OrderStatus `json:"status"`
}

// Validate checks that at least one order is named.
func (r *BulkUpdateStatusRequest) Validate() error {
	return validateStruct(r, "")
}

// BulkUpdateResult reports a successful bulk change.
type BulkUpdateResult struct {
	UpdatedCount int         `json:"updatedCount"`
	NewStatus    OrderStatus `json:"newStatus"`
}

// StatusChange reports a successful admin status change.
type StatusChange struct {
	Order          *Order      `json:"order"`
	PreviousStatus OrderStatus `json:"previousStatus"`
}

// OrderResponse is the client view of an order.
type OrderResponse struct {
	*Order
	StatusLabel              string `json:"statusLabel"`
	ItemsCount               int    `json:"itemsCount"`
	CanBeCancelled           bool   `json:"canBeCancelled"`
	FormattedShippingAddress string `json:"formattedShippingAddress"`
}

// NewOrderResponse wraps an order with its derived fields.
func NewOrderResponse(o *Order) *OrderResponse {
	return &OrderResponse{
		Order:                    o,
		StatusLabel:              o.Status.Label(),
		ItemsCount:               o.ItemsCount(),
		CanBeCancelled:           o.CanBeCancelled(),
		FormattedShippingAddress: o.ShippingAddress.Format(),
	}
}

// OrderListFilter narrows an order listing. UserID is nil for listings
// across all customers.
type OrderListFilter struct {
	UserID  *uuid.UUID
	Status  *OrderStatus
	Page    int
	PerPage int
}

// maxListOffset bounds the row offset of a listing so (Page-1)*PerPage can
// neither overflow nor go past what PostgreSQL accepts.
const maxListOffset = math.MaxInt32

// Normalize clamps paging to sane bounds.
func (f *OrderListFilter) Normalize() {
	if f.PerPage <= 0 {
		f.PerPage = 15
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if maxPage := maxListOffset/f.PerPage + 1; f.Page > maxPage {
		f.Page = maxPage
	}
}

// Offset returns the row offset of the current page.
func (f *OrderListFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// PageMeta describes a page of results.
type PageMeta struct {
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
	PerPage     int `json:"perPage"`
	Total       int `json:"total"`
}

// NewPageMeta computes paging metadata.
func NewPageMeta(page, perPage, total int) PageMeta {
	last := (total + perPage - 1) / perPage
	if last < 1 {
		last = 1
	}
	return PageMeta{CurrentPage: page, LastPage: last, PerPage: perPage, Total: total}
}

// OrderPage is a page of orders.
type OrderPage struct {
	Data []Order  `json:"data"`
	Meta PageMeta `json:"meta"`
}
