package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
)

// Quote is one seller's priced response to the subset of an RFQ's line items
// it owns. total_cents is always subtotal + shipping + tax, computed
// server-side.
type Quote struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number        string            `gorm:"column:number;not null;uniqueIndex"`
	RFQID         uuid.UUID         `gorm:"column:rfq_id;type:uuid;not null;index"`
	SellerID      uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index"`
	SubtotalCents int               `gorm:"column:subtotal_cents;not null"`
	ShippingCents int               `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents      int               `gorm:"column:tax_cents;not null;default:0"`
	TotalCents    int               `gorm:"column:total_cents;not null"`
	Currency      enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	Incoterm      enums.Incoterm    `gorm:"column:incoterm;type:text;not null"`
	ValidUntil    time.Time         `gorm:"column:valid_until;not null"`
	Status        enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'submitted'"`
	AcceptedAt    *time.Time        `gorm:"column:accepted_at"`
	LineItems     []QuoteLineItem   `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// QuoteLineItem prices one seller-owned line of the parent RFQ.
type QuoteLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID        uuid.UUID  `gorm:"column:quote_id;type:uuid;not null;index"`
	RFQLineItemID  uuid.UUID  `gorm:"column:rfq_line_item_id;type:uuid;not null"`
	SKUID          uuid.UUID  `gorm:"column:sku_id;type:uuid;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	Unit           enums.Unit `gorm:"column:unit;type:text;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	TotalCents     int        `gorm:"column:total_cents;not null"`
	Notes          *string    `gorm:"column:notes"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
