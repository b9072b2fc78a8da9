// Package notify delivers order lifecycle notifications to customers.
package notify

import (
	"context"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Notifier is told about order events after they are committed. Callers treat
// delivery as best-effort: an error is logged, never surfaced to the client.
type Notifier interface {
	// OrderPlaced announces a newly created order.
	OrderPlaced(ctx context.Context, order *model.Order) error

	// StatusChanged announces a status change, including cancellation.
	StatusChanged(ctx context.Context, order *model.Order, previous model.OrderStatus) error
}

// logNotifier records notifications as structured log events. It stands in
// for a mail or messaging backend.
type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a Notifier that writes to the given logger.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *logNotifier) OrderPlaced(ctx context.Context, order *model.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.logger.Info().
		Str("event", "order_placed").
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("user_id", order.UserID.String()).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Int("items_count", order.ItemsCount()).
		Msg("order confirmation sent")

	return nil
}

func (n *logNotifier) StatusChanged(ctx context.Context, order *model.Order, previous model.OrderStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.logger.Info().
		Str("event", "order_status_changed").
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("user_id", order.UserID.String()).
		Str("previous_status", string(previous)).
		Str("status", string(order.Status)).
		Msg("order status update sent")

	return nil
}

// Nop returns a Notifier that discards every event.
func Nop() Notifier {
	return nopNotifier{}
}

type nopNotifier struct{}

func (nopNotifier) OrderPlaced(context.Context, *model.Order) error { return nil }

func (nopNotifier) StatusChanged(context.Context, *model.Order, model.OrderStatus) error {
	return nil
}
