// Package factory builds sample products for seeding and tests.
package factory

import (
	"context"
	"fmt"
	"math/rand"

	"product-catalog/internal/model"
	"product-catalog/internal/repository"
)

// Price bounds of generated products, inclusive.
const (
	MinPrice = 100
	MaxPrice = 1000
)

var words = []string{
	"lamp", "chair", "kettle", "blender", "notebook", "backpack", "headphones", "keyboard",
	"monitor", "mug", "blanket", "toaster", "camera", "speaker", "wallet", "umbrella",
	"jacket", "sneakers", "charger", "router", "tripod", "drone", "watch", "pillow",
}

// ProductFactory generates random products.
type ProductFactory struct {
	rng *rand.Rand
}

// New creates a factory using seed for its random source.
func New(seed int64) *ProductFactory {
	return &ProductFactory{rng: rand.New(rand.NewSource(seed))}
}

// Make returns a product with a random single-word name and a price in [MinPrice, MaxPrice].
func (f *ProductFactory) Make() model.NewProduct {
	return model.NewProduct{
		Name:  words[f.rng.Intn(len(words))],
		Price: int64(MinPrice + f.rng.Intn(MaxPrice-MinPrice+1)),
	}
}

// Seed creates count products through repo and returns them in insertion order.
func (f *ProductFactory) Seed(ctx context.Context, repo repository.ProductRepository, count int) ([]model.Product, error) {
	created := make([]model.Product, 0, count)
	for i := 0; i < count; i++ {
		product, err := repo.Create(ctx, f.Make())
		if err != nil {
			return created, fmt.Errorf("failed to seed product %d of %d: %w", i+1, count, err)
		}
		created = append(created, *product)
	}
	return created, nil
}
