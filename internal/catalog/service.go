package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
)

// SKUDetail is the catalog view consumed by the cart, RFQ, and quote engines.
type SKUDetail struct {
	SKU           models.SKU         `json:"sku"`
	IsActive      bool               `json:"is_active"`
	OwnerSellerID uuid.UUID          `json:"owner_seller_id"`
	ProductMOQ    int                `json:"product_moq"`
	PriceTiers    []models.PriceTier `json:"price_tiers"`
	AvailableQty  *int               `json:"available_qty,omitempty"`
}

// Service exposes SKU lookups to the workflow engines.
type Service interface {
	FindSKU(ctx context.Context, skuID uuid.UUID) (*SKUDetail, error)
	FindSKUs(ctx context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]*SKUDetail, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// FindSKU returns the detail for an active SKU. Inactive and unknown SKUs
// are both reported as not found; buyers have no business with either.
func (s *service) FindSKU(ctx context.Context, skuID uuid.UUID) (*SKUDetail, error) {
	if skuID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku id required")
	}
	sku, err := s.repo.FindSKU(ctx, skuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sku")
	}
	return buildDetail(sku), nil
}

// FindSKUs returns details keyed by sku id. Missing ids are simply absent
// from the result; the caller decides whether that is an error.
func (s *service) FindSKUs(ctx context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]*SKUDetail, error) {
	skus, err := s.repo.FindSKUs(ctx, skuIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load skus")
	}
	details := make(map[uuid.UUID]*SKUDetail, len(skus))
	for i := range skus {
		details[skus[i].ID] = buildDetail(&skus[i])
	}
	return details, nil
}

func buildDetail(sku *models.SKU) *SKUDetail {
	detail := &SKUDetail{
		SKU:        *sku,
		IsActive:   sku.IsActive,
		PriceTiers: sku.PriceTiers,
	}
	if sku.Product != nil {
		detail.OwnerSellerID = sku.Product.SellerID
		detail.ProductMOQ = sku.Product.MOQ
		if !sku.Product.IsActive {
			detail.IsActive = false
		}
	}
	if sku.Inventory != nil {
		qty := sku.Inventory.AvailableQty
		detail.AvailableQty = &qty
	}
	return detail
}
