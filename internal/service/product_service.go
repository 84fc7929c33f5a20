package service

import (
	"context"
	"fmt"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"

	"github.com/rs/zerolog"
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

// List retrieves every product.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return products, nil
}

// Create stores a product.
func (s *productService) Create(ctx context.Context, input model.NewProduct) (*model.Product, error) {
	product, err := s.productRepo.Create(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).
			Str("name", input.Name).
			Int64("price", input.Price).
			Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Int64("price", product.Price).
		Msg("product created")

	return product, nil
}

// Ping checks the repository.
func (s *productService) Ping(ctx context.Context) error {
	if err := s.productRepo.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("product store unreachable")
		return err
	}
	return nil
}
