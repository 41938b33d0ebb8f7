package model

import (
	"time"

	"gorm.io/gorm"
)

type VariantKind string

const (
	VariantColor VariantKind = "color"
	VariantSize  VariantKind = "size"
)

// VariantValue is one selectable attribute value (a color or a size).
// SKUs reference a (color, size) pair of these.
type VariantValue struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Kind      VariantKind    `gorm:"type:varchar(20);not null;index" json:"kind"`
	Value     string         `gorm:"not null" json:"value"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (VariantValue) TableName() string {
	return "variant_values"
}
