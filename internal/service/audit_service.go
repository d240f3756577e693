package service

import (
	"context"
	"encoding/json"
	"log"

	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/repository"
	"github.com/google/uuid"
)

// AuditService is a best-effort write-only sink. Every mutating operation and
// every authorization denial goes through Record; a failed audit write is
// logged and never blocks or rolls back the primary operation.
type AuditService interface {
	Record(ctx context.Context, userID *uuid.UUID, action string, meta map[string]interface{})
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) Record(ctx context.Context, userID *uuid.UUID, action string, meta map[string]interface{}) {
	payload := "{}"
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			payload = string(b)
		}
	}

	entry := &model.AuditLog{
		UserID: userID,
		Action: action,
		Meta:   payload,
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("ERROR: failed to write audit log for action %s: %v", action, err)
	}
}
