package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Audit rows are append-only: this interface deliberately offers no update
// and no delete.
type AuditLogsRepository interface {
	WithTx(q Querier) AuditLogsRepository
	Create(ctx context.Context, auditLog *models.AuditLog) error
	GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.AuditLog, error)
	List(ctx context.Context, scope tenancy.Scope, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db Querier
}

func NewAuditLogsRepo(db Querier) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) WithTx(q Querier) AuditLogsRepository {
	return &auditLogsRepo{db: q}
}

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}
	if auditLog.CreatedAt.IsZero() {
		auditLog.CreatedAt = time.Now()
	}

	changesBytes, err := json.Marshal(auditLog.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal changes: %w", err)
	}

	var metadataBytes []byte
	if auditLog.Metadata != nil {
		metadataBytes, err = json.Marshal(auditLog.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_logs (id, company_id, user_id, auditable_type, auditable_id, action, changes, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.Exec(ctx, query,
		auditLog.ID,
		auditLog.CompanyID,
		auditLog.UserID,
		auditLog.AuditableType,
		auditLog.AuditableID,
		auditLog.Action,
		changesBytes,
		metadataBytes,
		auditLog.CreatedAt,
	)
	return err
}

func (r *auditLogsRepo) GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.AuditLog, error) {
	query := `
		SELECT id, company_id, user_id, auditable_type, auditable_id, action, changes, metadata, created_at
		FROM audit_logs
		WHERE id = $1
	`
	args := []any{id}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $2`
	}

	auditLog, err := r.scanRow(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return auditLog, err
}

func (r *auditLogsRepo) List(ctx context.Context, scope tenancy.Scope, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	query := `
		SELECT id, company_id, user_id, auditable_type, auditable_id, action, changes, metadata, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []any{}

	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += fmt.Sprintf(" AND company_id = $%d", len(args))
	}
	if filters.AuditableType != nil {
		args = append(args, *filters.AuditableType)
		query += fmt.Sprintf(" AND auditable_type = $%d", len(args))
	}
	if filters.AuditableID != nil {
		args = append(args, *filters.AuditableID)
		query += fmt.Sprintf(" AND auditable_id = $%d", len(args))
	}
	if filters.Action != nil {
		args = append(args, *filters.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if filters.UserID != nil {
		args = append(args, *filters.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filters.Offset > 0 {
			args = append(args, filters.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auditLogs []*models.AuditLog
	for rows.Next() {
		auditLog, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		auditLogs = append(auditLogs, auditLog)
	}
	return auditLogs, rows.Err()
}

func (r *auditLogsRepo) scanRow(row pgx.Row) (*models.AuditLog, error) {
	auditLog := &models.AuditLog{}
	var changesBytes, metadataBytes []byte

	err := row.Scan(
		&auditLog.ID,
		&auditLog.CompanyID,
		&auditLog.UserID,
		&auditLog.AuditableType,
		&auditLog.AuditableID,
		&auditLog.Action,
		&changesBytes,
		&metadataBytes,
		&auditLog.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(changesBytes) > 0 {
		if err := json.Unmarshal(changesBytes, &auditLog.Changes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
		}
	}
	if len(metadataBytes) > 0 {
		if err := json.Unmarshal(metadataBytes, &auditLog.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return auditLog, nil
}
