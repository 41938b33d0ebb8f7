package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CategoryID  *uint          `gorm:"index" json:"category_id,omitempty"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	BasePrice   float64        `gorm:"not null" json:"base_price"`
	Thumbnail   string         `json:"thumbnail"`
	IsActive    bool           `gorm:"index" json:"is_active"` // no default tag: false must reach the insert
	TotalSold   int            `gorm:"default:0" json:"total_sold"` // cumulative units sold, restocked on cancellation
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SKUs     []ProductSKU `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"skus,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
