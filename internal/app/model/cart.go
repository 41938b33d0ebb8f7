package model

import (
	"time"

	"gorm.io/gorm"
)

type CartItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	ProductSKUID uint           `gorm:"column:product_sku_id;not null;index" json:"product_sku_id"`
	Quantity     int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	ProductSKU ProductSKU `gorm:"foreignKey:ProductSKUID" json:"product_sku,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
