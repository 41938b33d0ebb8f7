package service

import (
	"encoding/json"

	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/pkg/logger"
)

// Actor identifies who performed an admin action. Nil ID means the
// action was system-initiated (scheduler, migration).
type Actor struct {
	ID    *uint
	Email string
}

var SystemActor = Actor{Email: "system"}

type AuditService interface {
	Record(actor Actor, action, resource string, resourceID uint, detail interface{})
	ListRecent(limit, offset int) ([]model.AuditLog, error)
}

type auditService struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditService(auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// Record writes one audit entry. It never returns an error: audit
// failures are logged and must not fail the action they describe.
func (s *auditService) Record(actor Actor, action, resource string, resourceID uint, detail interface{}) {
	entry := &model.AuditLog{
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
	}

	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			entry.Detail = string(raw)
		}
	}

	if err := s.auditRepo.Create(entry); err != nil {
		logger.Error("Failed to write audit log", err, map[string]interface{}{
			"action":   action,
			"resource": resource,
		})
	}
}

func (s *auditService) ListRecent(limit, offset int) ([]model.AuditLog, error) {
	return s.auditRepo.FindRecent(limit, offset)
}
