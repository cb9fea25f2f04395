package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
	"github.com/hoshigrove/chasen-backend/pkg/types"
)

// Order is created from exactly one accepted quote. Line items and totals
// are copied verbatim at acceptance time and never re-derived.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number          string               `gorm:"column:number;not null;uniqueIndex"`
	QuoteID         uuid.UUID            `gorm:"column:quote_id;type:uuid;not null;uniqueIndex"`
	RFQID           uuid.UUID            `gorm:"column:rfq_id;type:uuid;not null;index"`
	BuyerID         uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID        uuid.UUID            `gorm:"column:seller_id;type:uuid;not null;index"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending_payment'"`
	SubtotalCents   int                  `gorm:"column:subtotal_cents;not null"`
	ShippingCents   int                  `gorm:"column:shipping_cents;not null;default:0"`
	TaxCents        int                  `gorm:"column:tax_cents;not null;default:0"`
	TotalCents      int                  `gorm:"column:total_cents;not null"`
	Currency        enums.Currency       `gorm:"column:currency;type:text;not null;default:'USD'"`
	ShippingAddress *types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	TrackingNumber  *string              `gorm:"column:tracking_number"`
	Carrier         *string              `gorm:"column:carrier"`
	ShippedAt       *time.Time           `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time           `gorm:"column:delivered_at"`
	BuyerNotes      *string              `gorm:"column:buyer_notes"`
	SellerNotes     *string              `gorm:"column:seller_notes"`
	LineItems       []OrderLineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory   []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem is the frozen snapshot of a quote line item.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	SKUID          uuid.UUID  `gorm:"column:sku_id;type:uuid;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	Unit           enums.Unit `gorm:"column:unit;type:text;not null"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	TotalCents     int        `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// OrderStatusHistory is the append-only ledger of order status changes.
// Rows are never mutated or deleted; one row per transition, including the
// implicit creation entry.
type OrderStatusHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Notes     *string           `gorm:"column:notes"`
	ChangedBy uuid.UUID         `gorm:"column:changed_by;type:uuid;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
