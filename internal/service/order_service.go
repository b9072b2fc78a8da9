package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	cartRepo          repository.CartRepository
	carts             CartService
	numbers           OrderNumberGenerator
	maxNumberAttempts int
	notifier          notify.Notifier
	logger            zerolog.Logger
	now               func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	carts CartService,
	numbers OrderNumberGenerator,
	maxNumberAttempts int,
	notifier notify.Notifier,
	logger zerolog.Logger,
) OrderService {
	if maxNumberAttempts < 1 {
		maxNumberAttempts = 1
	}
	return &orderService{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		cartRepo:          cartRepo,
		carts:             carts,
		numbers:           numbers,
		maxNumberAttempts: maxNumberAttempts,
		notifier:          notifier,
		logger:            logger.With().Str("service", "order").Logger(),
		now:               time.Now,
	}
}

// checkLines returns every line that cannot be ordered at its quantity, or
// nil when all of them can.
func checkLines(items []model.CartItem) *model.StockError {
	var issues []model.LineIssue
	for i := range items {
		if issue := model.CheckLine(&items[i]); issue != nil {
			issues = append(issues, *issue)
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return &model.StockError{Issues: issues}
}

// CreateOrder turns the user's cart into a pending order.
//
// Lines whose product was deactivated are dropped from the cart first. Every
// remaining line is then checked and all failures are reported together.
// Inside the transaction the products are locked, the check is repeated on
// the locked rows, and stock is reserved line by line. Only the ordered lines
// leave the cart; lines added while the order was being placed stay. Any
// failure rolls the whole order back and leaves the cart as it was.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (order *model.Order, err error) {
	if req == nil {
		return nil, model.NewValidationError("shippingAddress", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.carts.Reconcile(ctx, userID, EvictInactive)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		s.logger.Debug().Str("user_id", userID.String()).Msg("checkout with empty cart")
		return nil, model.ErrEmptyCart
	}

	if stockErr := checkLines(cart.Items); stockErr != nil {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Int("issues", len(stockErr.Issues)).
			Msg("cart failed availability check")
		return nil, stockErr
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.placeOrder(ctx, tx, userID, req, cart.Items)
	if err != nil {
		return nil, conflictOrErr(err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, conflictOrErr(fmt.Errorf("failed to create order: %w", err))
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("user_id", userID.String()).
		Int("item_count", len(order.Items)).
		Str("total_amount", order.TotalAmount.StringFixed(2)).
		Msg("order created successfully")

	s.notifyPlaced(ctx, order)

	return order, nil
}

func (s *orderService) placeOrder(
	ctx context.Context,
	tx pgx.Tx,
	userID uuid.UUID,
	req *model.CreateOrderRequest,
	items []model.CartItem,
) (*model.Order, error) {
	productIDs := make([]string, len(items))
	lineIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
		lineIDs[i] = item.ID
	}

	locked, err := s.productRepo.LockForUpdate(ctx, tx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	lines := make([]model.CartItem, len(items))
	for i, item := range items {
		item.Product = nil
		if p, ok := locked[item.ProductID]; ok {
			item.Product = &p
		}
		lines[i] = item
	}
	if stockErr := checkLines(lines); stockErr != nil {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Int("issues", len(stockErr.Issues)).
			Msg("stock changed before products were locked")
		return nil, stockErr
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          model.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           make([]model.OrderItem, len(lines)),
	}
	for i := range lines {
		order.Items[i] = model.NewOrderItem(order.ID, lines[i].Product, lines[i].Quantity)
	}
	order.TotalAmount = order.CalculateTotal()

	if err := s.insertWithNumber(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	for _, item := range order.Items {
		ok, err := s.productRepo.Reserve(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		if !ok {
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("reservation refused under lock")
			return nil, model.ErrReservationConflict
		}
	}

	if _, err := s.cartRepo.DeleteByIDs(ctx, tx, lineIDs); err != nil {
		return nil, fmt.Errorf("failed to clear ordered cart lines: %w", err)
	}

	return order, nil
}

// insertWithNumber stores the order under a freshly generated number,
// drawing a new one whenever the number is already taken.
func (s *orderService) insertWithNumber(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for attempt := 1; attempt <= s.maxNumberAttempts; attempt++ {
		number, err := s.numbers.Next()
		if err != nil {
			return err
		}
		order.OrderNumber = number

		err = s.orderRepo.CreateOrder(ctx, tx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			return fmt.Errorf("failed to create order: %w", err)
		}
		s.logger.Warn().
			Str("order_number", number).
			Int("attempt", attempt).
			Msg("order number taken, retrying")
	}
	return fmt.Errorf("failed to allocate a unique order number after %d attempts", s.maxNumberAttempts)
}

// conflictOrErr maps lost database races to ErrReservationConflict.
func conflictOrErr(err error) error {
	if repository.IsConcurrencyFailure(err) {
		return model.ErrReservationConflict
	}
	return err
}

// GetOrder returns one of the user's orders. Orders of other users are
// reported as not found.
func (s *orderService) GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*model.Order, error) {
	order, err := s.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNumber returns any order.
func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.GetByNumber(ctx, orderNumber)
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns a page of the user's orders, newest first.
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, filter model.OrderListFilter) (*model.OrderPage, error) {
	filter.UserID = &userID
	return s.listOrders(ctx, filter)
}

// ListAllOrders returns a page of every customer's orders, newest first.
func (s *orderService) ListAllOrders(ctx context.Context, filter model.OrderListFilter) (*model.OrderPage, error) {
	filter.UserID = nil
	return s.listOrders(ctx, filter)
}

func (s *orderService) listOrders(ctx context.Context, filter model.OrderListFilter) (*model.OrderPage, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	filter.Normalize()

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		event := s.logger.Error().Err(err)
		if filter.UserID != nil {
			event = event.Str("user_id", filter.UserID.String())
		}
		event.Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.OrderPage{
		Data: orders,
		Meta: model.NewPageMeta(filter.Page, filter.PerPage, total),
	}, nil
}

// CancelOrder cancels one of the user's orders and restores the stock it
// reserved.
func (s *orderService) CancelOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.orderRepo.GetByNumberForUpdate(ctx, tx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}

	previous := order.Status
	if err = s.applyTransition(ctx, tx, order, model.OrderStatusCancelled, nil); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, conflictOrErr(fmt.Errorf("failed to cancel order: %w", err))
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("user_id", userID.String()).
		Str("previous_status", string(previous)).
		Msg("order cancelled by customer")

	s.notifyStatus(ctx, order, previous)

	return order, nil
}

// UpdateStatus moves any order along the status graph. Moving to cancelled
// restores stock.
func (s *orderService) UpdateStatus(ctx context.Context, orderNumber string, req *model.UpdateStatusRequest) (change *model.StatusChange, err error) {
	if req == nil {
		return nil, model.NewValidationError("status", "is required")
	}
	if !req.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByNumberForUpdate(ctx, tx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	previous := order.Status
	if err = s.applyTransition(ctx, tx, order, req.Status, req.AdminNotes); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, conflictOrErr(fmt.Errorf("failed to update order status: %w", err))
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("previous_status", string(previous)).
		Str("status", string(order.Status)).
		Msg("order status updated")

	s.notifyStatus(ctx, order, previous)

	return &model.StatusChange{Order: order, PreviousStatus: previous}, nil
}

// BulkUpdateStatus validates every target before touching any of them. One
// unknown order or illegal transition rejects the whole request.
func (s *orderService) BulkUpdateStatus(ctx context.Context, req *model.BulkUpdateStatusRequest) (result *model.BulkUpdateResult, err error) {
	if req == nil {
		return nil, model.NewValidationError("orderIds", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	ids := make([]uuid.UUID, 0, len(req.OrderIDs))
	seen := make(map[uuid.UUID]bool, len(req.OrderIDs))
	for _, id := range req.OrderIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update orders: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	orders, err := s.orderRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to update orders: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	var invalid []model.InvalidOrder
	for _, id := range ids {
		o, ok := byID[id]
		if !ok {
			invalid = append(invalid, model.InvalidOrder{OrderID: id.String(), Reason: "order not found"})
			continue
		}
		if terr := model.ValidateTransition(o.Status, req.Status); terr != nil {
			invalid = append(invalid, model.InvalidOrder{
				OrderID:       id.String(),
				OrderNumber:   o.OrderNumber,
				CurrentStatus: o.Status,
				Reason:        terr.Error(),
			})
		}
	}
	if len(invalid) > 0 {
		s.logger.Warn().
			Int("requested", len(ids)).
			Int("invalid", len(invalid)).
			Str("status", string(req.Status)).
			Msg("bulk status update rejected")
		return nil, &model.BulkTransitionError{Requested: req.Status, Invalid: invalid}
	}

	previous := make(map[uuid.UUID]model.OrderStatus, len(orders))
	for i := range orders {
		previous[orders[i].ID] = orders[i].Status
		if req.Status == model.OrderStatusCancelled {
			if err = s.releaseItems(ctx, tx, &orders[i]); err != nil {
				return nil, err
			}
		}
	}

	updated, err := s.orderRepo.UpdateStatusBulk(ctx, tx, ids, req.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to update orders: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, conflictOrErr(fmt.Errorf("failed to update orders: %w", err))
	}

	s.logger.Info().
		Int64("updated", updated).
		Str("status", string(req.Status)).
		Msg("bulk status update applied")

	for i := range orders {
		orders[i].Status = req.Status
		s.notifyStatus(ctx, &orders[i], previous[orders[i].ID])
	}

	return &model.BulkUpdateResult{UpdatedCount: int(updated), NewStatus: req.Status}, nil
}

// applyTransition validates and stores a status change on a locked order.
func (s *orderService) applyTransition(ctx context.Context, tx pgx.Tx, order *model.Order, status model.OrderStatus, adminNotes *string) error {
	if err := model.ValidateTransition(order.Status, status); err != nil {
		s.logger.Debug().
			Str("order_number", order.OrderNumber).
			Str("current", string(order.Status)).
			Str("requested", string(status)).
			Msg("status transition rejected")
		return err
	}

	if status == model.OrderStatusCancelled {
		if err := s.releaseItems(ctx, tx, order); err != nil {
			return err
		}
	}

	if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, status, adminNotes); err != nil {
		return err
	}

	order.Status = status
	order.UpdatedAt = s.now().UTC()
	if adminNotes != nil {
		order.AdminNotes = adminNotes
	}
	return nil
}

// releaseItems returns every reserved unit of the order to stock.
func (s *orderService) releaseItems(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for _, item := range order.Items {
		if err := s.productRepo.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error().
				Err(err).
				Str("order_number", order.OrderNumber).
				Str("product_id", item.ProductID).
				Msg("failed to restore stock")
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}
	return nil
}

func (s *orderService) notifyPlaced(ctx context.Context, order *model.Order) {
	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		s.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("order confirmation not delivered")
	}
}

func (s *orderService) notifyStatus(ctx context.Context, order *model.Order, previous model.OrderStatus) {
	if err := s.notifier.StatusChanged(ctx, order, previous); err != nil {
		s.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("status update not delivered")
	}
}
