package model

import (
	"time"
)

// AuditLog is an append-only record of an admin mutation. Rows are
// write-once: no UpdatedAt, no soft delete.
type AuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ActorID    *uint     `gorm:"index" json:"actor_id,omitempty"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `gorm:"type:varchar(40);not null;index" json:"action"` // create, update, delete, status_change, stock_sync
	Resource   string    `gorm:"type:varchar(40);not null;index" json:"resource"`
	ResourceID uint      `gorm:"index" json:"resource_id"`
	Detail     string    `gorm:"type:text" json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
