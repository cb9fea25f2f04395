package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
)

// Cart is a buyer's single active selection set prior to commitment.
// One active cart per buyer, enforced by lookup-or-create.
type Cart struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID       uuid.UUID        `gorm:"column:buyer_id;type:uuid;not null;index"`
	Status        enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	SubtotalCents int              `gorm:"column:subtotal_cents;not null;default:0"`
	ItemCount     int              `gorm:"column:item_count;not null;default:0"`
	Items         []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is a (cart, SKU) pair. The unit price is re-resolved from the
// SKU's current tiers whenever the quantity changes.
type CartItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_sku"`
	SKUID          uuid.UUID `gorm:"column:sku_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_sku"`
	SellerID       uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	TotalCents     int       `gorm:"column:total_cents;not null"`
	Notes          *string   `gorm:"column:notes"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
