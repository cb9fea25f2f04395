package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
)

// Repository loads SKUs with the product, tier, and inventory context
// the workflow engines need for validation and pricing.
type Repository interface {
	FindSKU(ctx context.Context, skuID uuid.UUID) (*models.SKU, error)
	FindSKUs(ctx context.Context, skuIDs []uuid.UUID) ([]models.SKU, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindSKU(ctx context.Context, skuID uuid.UUID) (*models.SKU, error) {
	var sku models.SKU
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("PriceTiers").
		Preload("Inventory").
		Where("id = ?", skuID).
		First(&sku).Error
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *repository) FindSKUs(ctx context.Context, skuIDs []uuid.UUID) ([]models.SKU, error) {
	if len(skuIDs) == 0 {
		return nil, nil
	}
	var skus []models.SKU
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("PriceTiers").
		Preload("Inventory").
		Where("id IN ?", skuIDs).
		Find(&skus).Error
	if err != nil {
		return nil, err
	}
	return skus, nil
}
