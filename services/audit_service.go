package services

import (
	"context"

	"github.com/mkoenig/ssoportal/models"
	"github.com/mkoenig/ssoportal/repositories"
)

// AuditService interface defines audit trail business logic
type AuditService interface {
	Record(ctx context.Context, entry *models.AuditLogEntry) error
	RecentEvents(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

// auditService implements AuditService interface
type auditService struct {
	auditRepo repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// Record stores an audit entry
func (s *auditService) Record(ctx context.Context, entry *models.AuditLogEntry) error {
	return s.auditRepo.Create(ctx, entry)
}

// RecentEvents returns the newest audit entries
func (s *auditService) RecentEvents(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.auditRepo.Recent(ctx, limit)
}
