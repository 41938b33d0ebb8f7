package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentBank PaymentMethod = "bank_transfer"
)

type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Code            string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	UserID          *uint          `gorm:"index" json:"user_id,omitempty"` // nil for guest checkout
	TotalAmount     float64        `gorm:"not null" json:"total_amount"`
	Status          OrderStatus    `gorm:"type:varchar(20);default:'new';index" json:"status"`
	PaymentMethod   PaymentMethod  `gorm:"type:varchar(20);default:'cod'" json:"payment_method"`
	IsPaid          bool           `gorm:"default:false" json:"is_paid"`
	ShippingName    string         `gorm:"not null" json:"shipping_name"`
	ShippingPhone   string         `gorm:"not null" json:"shipping_phone"`
	ShippingAddress string         `gorm:"type:text;not null" json:"shipping_address"`
	Note            string         `gorm:"type:text" json:"note"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Details []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderDetail is a purchase-time snapshot of one line. Product name, color
// and size are denormalized so the line survives later SKU deletion or
// product renames; ProductSKUID is nulled when the SKU goes away.
type OrderDetail struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	OrderID      uint           `gorm:"not null;index" json:"order_id"`
	ProductID    uint           `gorm:"not null;index" json:"product_id"`
	ProductSKUID *uint          `gorm:"column:product_sku_id;index" json:"product_sku_id,omitempty"`
	ProductName  string         `gorm:"not null" json:"product_name"`
	ColorName    string         `json:"color_name"`
	SizeName     string         `json:"size_name"`
	Quantity     int            `gorm:"not null" json:"quantity"`
	UnitPrice    float64        `gorm:"not null" json:"unit_price"`
	Subtotal     float64        `gorm:"not null" json:"subtotal"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Order      Order       `gorm:"foreignKey:OrderID" json:"-"`
	ProductSKU *ProductSKU `gorm:"foreignKey:ProductSKUID" json:"product_sku,omitempty"`
}

func (OrderDetail) TableName() string {
	return "order_details"
}
