package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

func (p ReconcilePolicy) evicts(item *model.CartItem) bool {
	if p == EvictInactive {
		return !item.IsActive()
	}
	return !item.IsAvailable()
}

// Reconcile loads the cart, deletes lines the policy rejects and returns the
// survivors. Deletion runs without a lock; a line evicted concurrently by
// another request is simply counted once by whichever caller removed it.
func (s *cartService) Reconcile(ctx context.Context, userID uuid.UUID, policy ReconcilePolicy) (*ReconciledCart, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	result := &ReconciledCart{Items: make([]model.CartItem, 0, len(items))}
	var evict []uuid.UUID
	for i := range items {
		if policy.evicts(&items[i]) {
			evict = append(evict, items[i].ID)
			result.Removed = append(result.Removed, *model.CheckLine(&items[i]))
			continue
		}
		result.Items = append(result.Items, items[i])
	}

	if len(evict) > 0 {
		if _, err := s.cartRepo.DeleteByIDs(ctx, nil, evict); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to evict cart items")
			return nil, fmt.Errorf("failed to evict cart items: %w", err)
		}
		s.logger.Info().
			Str("user_id", userID.String()).
			Int("removed", len(evict)).
			Msg("unavailable cart items removed")
	}

	return result, nil
}

// View returns the reconciled cart with totals.
func (s *cartService) View(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.Reconcile(ctx, userID, EvictUnavailable)
	if err != nil {
		return nil, err
	}

	return &model.CartResponse{
		Items:                   cart.Items,
		Totals:                  model.SumCart(cart.Items),
		UnavailableItemsRemoved: len(cart.Removed),
	}, nil
}

// Summary returns the reconciled cart totals without lines.
func (s *cartService) Summary(ctx context.Context, userID uuid.UUID) (*model.CartSummary, error) {
	cart, err := s.Reconcile(ctx, userID, EvictUnavailable)
	if err != nil {
		return nil, err
	}

	return &model.CartSummary{
		CartTotals:              model.SumCart(cart.Items),
		UnavailableItemsRemoved: len(cart.Removed),
	}, nil
}

// Validate evicts inactive lines and reports every line that cannot be
// ordered. It never fails on stock problems; Valid is false instead.
func (s *cartService) Validate(ctx context.Context, userID uuid.UUID) (*model.CartValidation, error) {
	cart, err := s.Reconcile(ctx, userID, EvictInactive)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 && len(cart.Removed) == 0 {
		return nil, model.ErrEmptyCart
	}

	result := &model.CartValidation{
		ValidItems:   []model.CartItem{},
		InvalidItems: append([]model.LineIssue{}, cart.Removed...),
	}
	for i := range cart.Items {
		if issue := model.CheckLine(&cart.Items[i]); issue != nil {
			result.InvalidItems = append(result.InvalidItems, *issue)
			continue
		}
		result.ValidItems = append(result.ValidItems, cart.Items[i])
	}
	result.Valid = len(result.InvalidItems) == 0
	result.Totals = model.SumCart(result.ValidItems)

	return result, nil
}

func shortfall(item *model.CartItem, product *model.Product, requested int) *model.StockError {
	return &model.StockError{Issues: []model.LineIssue{{
		CartItemID:        cartItemIDString(item),
		ProductID:         product.ID,
		ProductName:       product.Name,
		Reason:            model.ReasonInsufficientStock,
		RequestedQuantity: requested,
		AvailableQuantity: product.StockQuantity,
	}}}
}

func cartItemIDString(item *model.CartItem) string {
	if item == nil {
		return ""
	}
	return item.ID.String()
}

// AddItem adds a product to the cart. An existing line for the same product
// absorbs the quantity; the merged total must still fit the stock on hand.
// The merge itself re-checks stock, so concurrent adds for one product cannot
// push a line past it.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (result *model.AddToCartResult, err error) {
	if req == nil {
		return nil, model.NewValidationError("productId", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID).Msg("failed to get product")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, model.ErrProductNotFound
	}
	if !product.InStock(req.Quantity) {
		return nil, shortfall(nil, product, req.Quantity)
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	existing, err := s.cartRepo.GetByProductForUpdate(ctx, tx, userID, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	if existing != nil && !product.InStock(existing.Quantity+req.Quantity) {
		err = shortfall(existing, product, existing.Quantity+req.Quantity)
		return nil, err
	}

	item := &model.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  req.Quantity,
	}
	inserted, err := s.cartRepo.Merge(ctx, tx, item)
	if errors.Is(err, repository.ErrExceedsStock) {
		requested := req.Quantity
		if existing != nil {
			requested += existing.Quantity
		}
		err = shortfall(existing, product, requested)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	item.Product = product
	action := model.CartActionUpdated
	if inserted {
		action = model.CartActionAdded
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", product.ID).
		Int("quantity", item.Quantity).
		Str("action", string(action)).
		Msg("cart item saved")

	return &model.AddToCartResult{Item: *item, Action: action}, nil
}

// UpdateQuantity replaces the quantity of a line. A line whose product is no
// longer sold is removed and reported as ErrProductNotFound.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartItem, error) {
	if err := model.ValidateCartQuantity(quantity); err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if item == nil {
		return nil, model.ErrCartItemNotFound
	}

	if !item.IsActive() {
		if _, err := s.cartRepo.Delete(ctx, userID, itemID); err != nil {
			return nil, fmt.Errorf("failed to remove unavailable cart item: %w", err)
		}
		s.logger.Info().
			Str("user_id", userID.String()).
			Str("product_id", item.ProductID).
			Msg("inactive cart item removed on update")
		return nil, model.ErrProductNotFound
	}

	if !item.Product.InStock(quantity) {
		return nil, shortfall(item, item.Product, quantity)
	}

	if err := s.cartRepo.SetQuantity(ctx, nil, item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity

	return item, nil
}

// RemoveItem deletes one line.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	ok, err := s.cartRepo.Delete(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !ok {
		return model.ErrCartItemNotFound
	}
	return nil
}

// Clear deletes every line.
func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.cartRepo.DeleteByUser(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return n, nil
}
