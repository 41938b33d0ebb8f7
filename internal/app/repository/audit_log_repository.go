package repository

import (
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"gorm.io/gorm"
)

// AuditLogRepository is append-only: rows are created once and never
// updated or deleted.
type AuditLogRepository interface {
	Create(entry *model.AuditLog) error
	FindRecent(limit, offset int) ([]model.AuditLog, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(entry *model.AuditLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to create audit log in database", err, map[string]interface{}{
			"action":   entry.Action,
			"resource": entry.Resource,
		})
		return err
	}
	return nil
}

func (r *auditLogRepository) FindRecent(limit, offset int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []model.AuditLog
	if err := r.db.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
