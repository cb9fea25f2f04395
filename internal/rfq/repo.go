package rfq

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

// NewRepository builds an RFQ repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRFQ(ctx context.Context, rfq *models.RFQ) (*models.RFQ, error) {
	if err := r.db.WithContext(ctx).Omit("LineItems").Create(rfq).Error; err != nil {
		return nil, err
	}
	return rfq, nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.RFQLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindRFQ(ctx context.Context, rfqID uuid.UUID) (*models.RFQ, error) {
	var rfq models.RFQ
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(q *gorm.DB) *gorm.DB {
			return q.Order("created_at ASC")
		}).
		Where("id = ?", rfqID).
		First(&rfq).Error
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *repository) ListBuyerRFQs(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters RFQFilters) (*RFQList, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.RFQ{}).
		Preload("LineItems").
		Where("buyer_id = ?", buyerID).
		Scopes(pagination.Scope(cursor, params.Limit))

	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}

	var rows []models.RFQ
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return page(rows, params.Limit), nil
}

// ListSellerRFQs returns RFQs with at least one line item owned by the seller,
// still open for quoting, with line items narrowed to the seller's own.
func (r *repository) ListSellerRFQs(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*RFQList, error) {
	cursor, err := pagination.Parse(params.Cursor)
	if err != nil {
		return nil, err
	}

	owned := r.db.
		Model(&models.RFQLineItem{}).
		Select("rfq_id").
		Where("seller_id = ?", sellerID)

	openStatuses := []enums.RFQStatus{
		enums.RFQStatusSubmitted,
		enums.RFQStatusPartiallyQuoted,
		enums.RFQStatusQuoted,
	}

	var rows []models.RFQ
	err = r.db.WithContext(ctx).
		Model(&models.RFQ{}).
		Preload("LineItems", "seller_id = ?", sellerID).
		Where("id IN (?)", owned).
		Where("status IN ?", openStatuses).
		Scopes(pagination.Scope(cursor, params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return page(rows, params.Limit), nil
}

func (r *repository) UpdateRFQ(ctx context.Context, rfqID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.RFQ{}).
		Where("id = ?", rfqID).
		Updates(updates).Error
}

func page(rows []models.RFQ, limit int) *RFQList {
	normalized := pagination.NormalizeLimit(limit)
	list := &RFQList{RFQs: make([]RFQSummary, 0, len(rows))}
	hasMore := len(rows) > normalized
	if hasMore {
		rows = rows[:normalized]
	}
	for _, row := range rows {
		list.RFQs = append(list.RFQs, summarize(row))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		token := pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &token
	}
	return list
}
