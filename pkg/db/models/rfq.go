package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
)

// RFQ is a buyer's request for quotation, possibly spanning SKUs owned by
// several sellers. Line items are immutable once the RFQ is submitted.
type RFQ struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number             string          `gorm:"column:number;not null;uniqueIndex"`
	BuyerID            uuid.UUID       `gorm:"column:buyer_id;type:uuid;not null;index"`
	Title              string          `gorm:"column:title;not null"`
	DestinationCountry string          `gorm:"column:destination_country;not null"`
	DestinationCity    *string         `gorm:"column:destination_city"`
	Incoterm           enums.Incoterm  `gorm:"column:incoterm;type:text;not null"`
	NeededBy           *time.Time      `gorm:"column:needed_by"`
	SubmittedAt        time.Time       `gorm:"column:submitted_at;not null"`
	ExpiresAt          time.Time       `gorm:"column:expires_at;not null"`
	Status             enums.RFQStatus `gorm:"column:status;type:text;not null;default:'submitted'"`
	LineItems          []RFQLineItem   `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// RFQLineItem is one requested SKU within an RFQ. SellerID denormalizes the
// SKU's ownership at creation time; ownership never changes, and the column
// is what seller-visibility filters key on.
type RFQLineItem struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RFQID            uuid.UUID  `gorm:"column:rfq_id;type:uuid;not null;index"`
	SKUID            uuid.UUID  `gorm:"column:sku_id;type:uuid;not null"`
	SellerID         uuid.UUID  `gorm:"column:seller_id;type:uuid;not null;index"`
	Qty              int        `gorm:"column:qty;not null"`
	Unit             enums.Unit `gorm:"column:unit;type:text;not null"`
	TargetPriceCents *int       `gorm:"column:target_price_cents"`
	Notes            *string    `gorm:"column:notes"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
}
