package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateQuote(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Omit("LineItems").Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.QuoteLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(q *gorm.DB) *gorm.DB {
			return q.Order("created_at ASC")
		}).
		Where("id = ?", quoteID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListBuyerQuotes scopes by ownership of the parent RFQ.
func (r *repository) ListBuyerQuotes(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters QuoteFilters) (*QuoteList, error) {
	owned := r.db.
		Model(&models.RFQ{}).
		Select("id").
		Where("buyer_id = ?", buyerID)
	return r.list(ctx, params, filters, func(q *gorm.DB) *gorm.DB {
		return q.Where("rfq_id IN (?)", owned)
	})
}

func (r *repository) ListSellerQuotes(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters QuoteFilters) (*QuoteList, error) {
	return r.list(ctx, params, filters, func(q *gorm.DB) *gorm.DB {
		return q.Where("seller_id = ?", sellerID)
	})
}

func (r *repository) list(ctx context.Context, params pagination.Params, filters QuoteFilters, scope func(*gorm.DB) *gorm.DB) (*QuoteList, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Preload("LineItems").
		Scopes(scope, pagination.Scope(cursor, params.Limit))

	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}

	var rows []models.Quote
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &QuoteList{Quotes: make([]QuoteSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Quotes = append(list.Quotes, summarize(row))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		token := pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &token
	}
	return list, nil
}

func (r *repository) UpdateQuote(ctx context.Context, quoteID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ?", quoteID).
		Updates(updates).Error
}

// DistinctQuotedSellers returns the sellers with a live quote on the RFQ.
func (r *repository) DistinctQuotedSellers(ctx context.Context, rfqID uuid.UUID) ([]uuid.UUID, error) {
	var sellerIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Distinct("seller_id").
		Where("rfq_id = ?", rfqID).
		Where("status IN ?", []enums.QuoteStatus{enums.QuoteStatusSubmitted, enums.QuoteStatusAccepted}).
		Pluck("seller_id", &sellerIDs).Error
	if err != nil {
		return nil, err
	}
	return sellerIDs, nil
}
