package repository

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/model"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// productRecord is the gorm mapping of a products row.
type productRecord struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	Price     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (productRecord) TableName() string {
	return "products"
}

func (p productRecord) toModel() model.Product {
	return model.Product{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// gormProductRepository implements the ProductRepository interface using gorm.
type gormProductRepository struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewGormProductRepository creates a gorm-backed product repository.
func NewGormProductRepository(db *gorm.DB, logger zerolog.Logger) ProductRepository {
	return &gormProductRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Str("driver", "gorm").Logger(),
	}
}

// List retrieves every product ordered by ID.
func (r *gormProductRepository) List(ctx context.Context) ([]model.Product, error) {
	var records []productRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products := make([]model.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toModel())
	}

	return products, nil
}

// Create inserts a product. gorm fills the ID and both timestamps.
func (r *gormProductRepository) Create(ctx context.Context, input model.NewProduct) (*model.Product, error) {
	rec := productRecord{
		Name:  input.Name,
		Price: input.Price,
	}

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		r.logger.Error().Err(err).Str("name", input.Name).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.Debug().Int64("product_id", rec.ID).Msg("product created successfully")

	p := rec.toModel()
	return &p, nil
}

// Ping checks that the database is reachable.
func (r *gormProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
