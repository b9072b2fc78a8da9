package model

import (
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeMissingField            = "MISSING_FIELD"
	ErrCodeValidationFailed        = "VALIDATION_FAILED"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeProductUnavailable      = "PRODUCT_UNAVAILABLE"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInvalidStatus           = "INVALID_STATUS"
	ErrCodeEmptyCart               = "EMPTY_CART"
	ErrCodeCartItemNotFound        = "CART_ITEM_NOT_FOUND"
	ErrCodeWishlistItemNotFound    = "WISHLIST_ITEM_NOT_FOUND"
	ErrCodeAlreadyInWishlist       = "ALREADY_IN_WISHLIST"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound            = "USER_NOT_FOUND"
	ErrCodeUserInactive            = "USER_INACTIVE"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeReservationConflict     = "RESERVATION_CONFLICT"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found or unavailable")
	ErrInvalidQuantity      = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidStatus        = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Cart is empty. Cannot create order.")
	ErrCartItemNotFound     = NewDomainError(ErrCodeCartItemNotFound, "Cart item not found")
	ErrWishlistItemNotFound = NewDomainError(ErrCodeWishlistItemNotFound, "Wishlist item not found")
	ErrAlreadyInWishlist    = NewDomainError(ErrCodeAlreadyInWishlist, "Product is already in wishlist")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound         = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrUserInactive         = NewDomainError(ErrCodeUserInactive, "Account is deactivated")
	ErrReservationConflict  = NewDomainError(ErrCodeReservationConflict, "Stock changed while placing the order, please try again")
)

// Reasons reported for a cart line that cannot be ordered.
const (
	ReasonProductUnavailable = "product_unavailable"
	ReasonInsufficientStock  = "insufficient_stock"
)

// LineIssue describes why one cart line cannot be ordered.
type LineIssue struct {
	CartItemID        string `json:"cartItemId,omitempty"`
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName"`
	Reason            string `json:"reason"`
	RequestedQuantity int    `json:"requestedQuantity,omitempty"`
	AvailableQuantity int    `json:"availableQuantity"`
}

// StockError lists every cart line that failed the availability check.
type StockError struct {
	Issues []LineIssue
}

func (e *StockError) Error() string {
	names := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		names[i] = issue.ProductID
	}
	return fmt.Sprintf("%d cart item(s) no longer available: %s", len(e.Issues), strings.Join(names, ", "))
}

// Code returns INSUFFICIENT_STOCK when every issue is a stock shortfall and
// PRODUCT_UNAVAILABLE otherwise.
func (e *StockError) Code() string {
	for _, issue := range e.Issues {
		if issue.Reason != ReasonInsufficientStock {
			return ErrCodeProductUnavailable
		}
	}
	return ErrCodeInsufficientStock
}

// CheckLine returns the issue for one cart line, or nil when it can be
// ordered at its quantity.
func CheckLine(item *CartItem) *LineIssue {
	if item.IsAvailable() {
		return nil
	}
	issue := &LineIssue{
		CartItemID:        item.ID.String(),
		ProductID:         item.ProductID,
		RequestedQuantity: item.Quantity,
	}
	if item.Product == nil || !item.Product.IsActive {
		issue.Reason = ReasonProductUnavailable
		if item.Product != nil {
			issue.ProductName = item.Product.Name
		}
		return issue
	}
	issue.ProductName = item.Product.Name
	issue.Reason = ReasonInsufficientStock
	issue.AvailableQuantity = item.Product.StockQuantity
	return issue
}

// TransitionError reports an order status change outside the legal graph.
type TransitionError struct {
	Current   OrderStatus
	Requested OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.Current, e.Requested)
}

// InvalidOrder describes one member of a rejected bulk update.
type InvalidOrder struct {
	OrderID       string      `json:"orderId"`
	OrderNumber   string      `json:"orderNumber,omitempty"`
	CurrentStatus OrderStatus `json:"currentStatus,omitempty"`
	Reason        string      `json:"reason"`
}

// BulkTransitionError rejects a whole bulk update and lists every offender.
type BulkTransitionError struct {
	Requested OrderStatus
	Invalid   []InvalidOrder
}

func (e *BulkTransitionError) Error() string {
	return fmt.Sprintf("%d order(s) cannot be moved to %s", len(e.Invalid), e.Requested)
}

// FieldError is a single failed input rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects failed input rules.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates a validation error with one field.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add records a failed rule.
func (v *ValidationError) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// Addf records a failed rule with a formatted message.
func (v *ValidationError) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// OrNil returns nil when no rule failed.
func (v *ValidationError) OrNil() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	msgs := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		msgs[i] = f.Field + " " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
