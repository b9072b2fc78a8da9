package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultProductLimit = 10
	maxProductLimit     = 100
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// clampPage keeps catalogue paging within bounds.
func clampPage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultProductLimit
	case limit > maxProductLimit:
		limit = maxProductLimit
	}
	return limit, max(offset, 0)
}

// GetAll lists active products with their effective prices.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.ProductView, error) {
	limit, offset = clampPage(limit, offset)

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	views := make([]model.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, model.NewProductView(p))
	}

	s.logger.Debug().
		Int("count", len(views)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("listed products")

	return views, nil
}

// GetByID returns one product. Inactive products are reported as not found.
func (s *productService) GetByID(ctx context.Context, id string) (*model.ProductView, error) {
	if id == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, model.ErrProductNotFound
	}

	view := model.NewProductView(*product)
	return &view, nil
}
