package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
)

// Product is a seller-owned matcha listing. Its SKUs inherit the seller
// ownership for the life of the record.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	Name        string                `gorm:"column:name;not null"`
	Category    enums.ProductCategory `gorm:"column:category;type:text;not null"`
	MOQ         int                   `gorm:"column:moq;not null;default:1"`
	IsActive    bool                  `gorm:"column:is_active;not null;default:true"`
	Description *string               `gorm:"column:description"`
	SKUs        []SKU                 `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
