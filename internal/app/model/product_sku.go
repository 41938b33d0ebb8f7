package model

import (
	"time"

	"gorm.io/gorm"
)

// ProductSKU is one purchasable color/size variant of a product with its
// own price and stock count. (product_id, color_value_id, size_value_id)
// is unique in practice; the stock-matrix sync keeps it that way.
type ProductSKU struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	SKUCode       string         `gorm:"column:sku_code;type:varchar(64);uniqueIndex;not null" json:"sku_code"`
	ColorValueID  *uint          `gorm:"index" json:"color_value_id,omitempty"`
	SizeValueID   *uint          `gorm:"index" json:"size_value_id,omitempty"`
	Price         float64        `gorm:"not null" json:"price"`
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product    Product       `gorm:"foreignKey:ProductID" json:"-"`
	ColorValue *VariantValue `gorm:"foreignKey:ColorValueID" json:"color_value,omitempty"`
	SizeValue  *VariantValue `gorm:"foreignKey:SizeValueID" json:"size_value,omitempty"`
}

func (ProductSKU) TableName() string {
	return "product_skus"
}
