package service

import (
	"context"

	"product-catalog/internal/model"
)

// ProductService defines operations for product management.
type ProductService interface {
	// List retrieves every product in insertion order.
	List(ctx context.Context) ([]model.Product, error)

	// Create stores a validated product and returns the persisted record.
	Create(ctx context.Context, input model.NewProduct) (*model.Product, error)

	// Ping reports whether the product store is reachable.
	Ping(ctx context.Context) error
}
