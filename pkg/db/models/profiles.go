package models

import (
	"time"

	"github.com/google/uuid"
)

// BuyerProfile is the purchasing identity resolved from an authenticated user.
type BuyerProfile struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CompanyName string    `gorm:"column:company_name;not null"`
	Country     string    `gorm:"column:country;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// SellerProfile is the selling identity that owns products and their SKUs.
type SellerProfile struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CompanyName string    `gorm:"column:company_name;not null"`
	Country     string    `gorm:"column:country;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
