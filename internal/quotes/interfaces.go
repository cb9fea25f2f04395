package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
)

// Repository persists quotes and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateQuote(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	CreateLineItems(ctx context.Context, items []models.QuoteLineItem) error
	FindQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error)
	ListBuyerQuotes(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters QuoteFilters) (*QuoteList, error)
	ListSellerQuotes(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters QuoteFilters) (*QuoteList, error)
	UpdateQuote(ctx context.Context, quoteID uuid.UUID, updates map[string]any) error
	DistinctQuotedSellers(ctx context.Context, rfqID uuid.UUID) ([]uuid.UUID, error)
}
