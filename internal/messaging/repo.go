package messaging

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
)

// Repository manages the buyer/seller communication threads that accompany
// RFQs. One thread per RFQ, created at submission time.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateThread(ctx context.Context, rfqID, buyerID uuid.UUID) (*models.MessageThread, error)
	FindThreadByRFQ(ctx context.Context, rfqID uuid.UUID) (*models.MessageThread, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a messaging repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateThread(ctx context.Context, rfqID, buyerID uuid.UUID) (*models.MessageThread, error) {
	thread := &models.MessageThread{
		RFQID:   rfqID,
		BuyerID: buyerID,
	}
	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		return nil, err
	}
	return thread, nil
}

func (r *repository) FindThreadByRFQ(ctx context.Context, rfqID uuid.UUID) (*models.MessageThread, error) {
	var thread models.MessageThread
	err := r.db.WithContext(ctx).
		Where("rfq_id = ?", rfqID).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}
