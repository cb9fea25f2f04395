package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageThread is the buyer/seller communication channel keyed by RFQ.
// Created alongside RFQ submission; message delivery lives outside the
// workflow engines.
type MessageThread struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RFQID     uuid.UUID `gorm:"column:rfq_id;type:uuid;not null;uniqueIndex"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
