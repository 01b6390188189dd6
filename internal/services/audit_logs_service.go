package services

import (
	"context"

	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
)

// AuditLogsService is the read surface over the audit trail. Writes happen
// only through the Mutator; nothing here mutates rows.
type AuditLogsService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error)
	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	ListForEntity(ctx context.Context, auditableType models.AuditableType, auditableID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditLogs repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogs repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{auditLogs: auditLogs}
}

func (s *auditLogsService) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	return s.auditLogs.GetByID(ctx, tenancy.ScopeFromContext(ctx), id)
}

func (s *auditLogsService) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return s.auditLogs.List(ctx, tenancy.ScopeFromContext(ctx), filters)
}

func (s *auditLogsService) ListForEntity(ctx context.Context, auditableType models.AuditableType, auditableID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	return s.List(ctx, &models.AuditLogFilters{
		AuditableType: &auditableType,
		AuditableID:   &auditableID,
		Limit:         limit,
		Offset:        offset,
	})
}
