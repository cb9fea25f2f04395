package rfq

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
)

// Repository persists RFQs and their immutable line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRFQ(ctx context.Context, rfq *models.RFQ) (*models.RFQ, error)
	CreateLineItems(ctx context.Context, items []models.RFQLineItem) error
	FindRFQ(ctx context.Context, rfqID uuid.UUID) (*models.RFQ, error)
	ListBuyerRFQs(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters RFQFilters) (*RFQList, error)
	ListSellerRFQs(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*RFQList, error)
	UpdateRFQ(ctx context.Context, rfqID uuid.UUID, updates map[string]any) error
}
