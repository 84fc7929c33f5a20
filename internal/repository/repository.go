package repository

import (
	"context"

	"product-catalog/internal/model"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves every product ordered by ID.
	List(ctx context.Context) ([]model.Product, error)

	// Create inserts a product and returns it with its generated ID and timestamps.
	Create(ctx context.Context, input model.NewProduct) (*model.Product, error)

	// Ping checks that the underlying store is reachable.
	Ping(ctx context.Context) error
}
