package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
)

// SKU is a sellable variant of a Product.
type SKU struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	Code       string         `gorm:"column:code;not null;uniqueIndex"`
	Unit       enums.Unit     `gorm:"column:unit;type:text;not null"`
	Currency   enums.Currency `gorm:"column:currency;type:text;not null;default:'USD'"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	Product    *Product       `gorm:"foreignKey:ProductID"`
	PriceTiers []PriceTier    `gorm:"foreignKey:SKUID;constraint:OnDelete:CASCADE"`
	Inventory  *InventoryItem `gorm:"foreignKey:SKUID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceTier is a quantity bracket with its own per-unit price. Tiers for a
// SKU must not share a min_qty; the applicable tier for quantity q is the
// highest min_qty tier with min_qty <= q.
type PriceTier struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKUID             uuid.UUID `gorm:"column:sku_id;type:uuid;not null;uniqueIndex:idx_price_tiers_sku_min"`
	MinQty            int       `gorm:"column:min_qty;not null;uniqueIndex:idx_price_tiers_sku_min"`
	MaxQty            *int      `gorm:"column:max_qty"`
	PricePerUnitCents int       `gorm:"column:price_per_unit_cents;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

// InventoryItem tracks advisory available quantity for a SKU. Reads are
// non-locking; two concurrent buyers can both pass the availability check.
type InventoryItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKUID        uuid.UUID `gorm:"column:sku_id;type:uuid;not null;uniqueIndex"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
