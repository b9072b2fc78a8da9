package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// wishlistService implements WishlistService.
type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	logger       zerolog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		logger:       logger.With().Str("service", "wishlist").Logger(),
	}
}

// List returns the wishlist, newest first, after deleting entries whose
// product is inactive or out of stock.
func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) (*model.WishlistResponse, error) {
	items, err := s.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	kept := make([]model.WishlistItem, 0, len(items))
	var evict []uuid.UUID
	for i := range items {
		if items[i].IsProductAvailable() {
			kept = append(kept, items[i])
			continue
		}
		evict = append(evict, items[i].ID)
	}

	if len(evict) > 0 {
		if _, err := s.wishlistRepo.DeleteByIDs(ctx, evict); err != nil {
			return nil, fmt.Errorf("failed to evict wishlist items: %w", err)
		}
		s.logger.Info().
			Str("user_id", userID.String()).
			Int("removed", len(evict)).
			Msg("unavailable wishlist items removed")
	}

	return &model.WishlistResponse{Items: kept, UnavailableItemsRemoved: len(evict)}, nil
}

// Add saves an active product.
func (s *wishlistService) Add(ctx context.Context, userID uuid.UUID, productID string) (*model.WishlistItem, error) {
	if err := (&model.AddToWishlistRequest{ProductID: productID}).Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, model.ErrProductNotFound
	}

	item := &model.WishlistItem{ID: uuid.New(), UserID: userID, ProductID: productID}
	added, err := s.wishlistRepo.Add(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}
	if !added {
		return nil, model.ErrAlreadyInWishlist
	}
	item.Product = product

	return item, nil
}

// Remove deletes one entry.
func (s *wishlistService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	ok, err := s.wishlistRepo.Delete(ctx, nil, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if !ok {
		return model.ErrWishlistItemNotFound
	}
	return nil
}

// RemoveByProduct deletes the entry for a product.
func (s *wishlistService) RemoveByProduct(ctx context.Context, userID uuid.UUID, productID string) error {
	ok, err := s.wishlistRepo.DeleteByProduct(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if !ok {
		return model.ErrWishlistItemNotFound
	}
	return nil
}

// Clear deletes every entry.
func (s *wishlistService) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.wishlistRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear wishlist: %w", err)
	}
	return n, nil
}

// Check reports whether the product is saved.
func (s *wishlistService) Check(ctx context.Context, userID uuid.UUID, productID string) (bool, error) {
	ok, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return ok, nil
}

// MoveToCart moves a wishlist entry into the cart in one transaction. The
// wishlist row and its product are locked together, so the stock compared
// against cannot change before commit. When the product is inactive or short
// of the merged cart quantity nothing is written and false is returned.
func (s *wishlistService) MoveToCart(ctx context.Context, userID, itemID uuid.UUID, quantity int) (moved bool, err error) {
	if err := model.ValidateCartQuantity(quantity); err != nil {
		return false, err
	}

	tx, err := s.wishlistRepo.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to move wishlist item: %w", err)
	}

	defer func() {
		if err != nil || !moved {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	entry, err := s.wishlistRepo.GetForUpdate(ctx, tx, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to move wishlist item: %w", err)
	}
	if entry == nil {
		return false, model.ErrWishlistItemNotFound
	}

	if !entry.Product.IsAvailable(quantity) {
		s.logger.Debug().
			Str("product_id", entry.ProductID).
			Int("quantity", quantity).
			Msg("wishlist product not available for move")
		return false, nil
	}

	ok, err := s.mergeIntoCart(ctx, tx, userID, entry.Product, quantity)
	if err != nil || !ok {
		return false, err
	}

	if _, err = s.wishlistRepo.Delete(ctx, tx, userID, itemID); err != nil {
		return false, fmt.Errorf("failed to move wishlist item: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to move wishlist item: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", entry.ProductID).
		Int("quantity", quantity).
		Msg("wishlist item moved to cart")

	return true, nil
}

// mergeIntoCart adds quantity to the user's line for the product, or creates
// the line, provided the resulting quantity fits the stock.
func (s *wishlistService) mergeIntoCart(ctx context.Context, tx pgx.Tx, userID uuid.UUID, product *model.Product, quantity int) (bool, error) {
	existing, err := s.cartRepo.GetByProductForUpdate(ctx, tx, userID, product.ID)
	if err != nil {
		return false, fmt.Errorf("failed to move wishlist item: %w", err)
	}
	if existing != nil && !product.InStock(existing.Quantity+quantity) {
		s.logger.Debug().
			Str("product_id", product.ID).
			Int("in_cart", existing.Quantity).
			Int("quantity", quantity).
			Msg("merged cart quantity exceeds stock")
		return false, nil
	}

	line := &model.CartItem{ID: uuid.New(), UserID: userID, ProductID: product.ID, Quantity: quantity}
	_, err = s.cartRepo.Merge(ctx, tx, line)
	if errors.Is(err, repository.ErrExceedsStock) {
		s.logger.Debug().
			Str("product_id", product.ID).
			Int("quantity", quantity).
			Msg("cart merge refused by stock")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to move wishlist item: %w", err)
	}
	return true, nil
}
