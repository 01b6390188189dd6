package repositories

import (
	"context"
	"errors"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AttachmentRepository interface {
	WithTx(q Querier) AttachmentRepository
	Create(ctx context.Context, scope tenancy.Scope, attachment *models.Attachment) error
	GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Attachment, error)
	SoftDelete(ctx context.Context, scope tenancy.Scope, id uuid.UUID, deletedBy *uuid.UUID) error
	List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Attachment, error)
}

type attachmentRepo struct {
	db Querier
}

func NewAttachmentRepo(db Querier) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) WithTx(q Querier) AttachmentRepository {
	return &attachmentRepo{db: q}
}

const attachmentColumns = `id, company_id, file_name, content_type, size, object_key, created_by, updated_by, deleted_at, created_at, updated_at`

func (r *attachmentRepo) Create(ctx context.Context, scope tenancy.Scope, attachment *models.Attachment) error {
	var explicit *uuid.UUID
	if attachment.CompanyID != uuid.Nil {
		explicit = &attachment.CompanyID
	}
	companyID, err := scope.StampCompany(explicit)
	if err != nil {
		return err
	}
	attachment.CompanyID = companyID

	if attachment.ID == uuid.Nil {
		attachment.ID = uuid.New()
	}
	now := time.Now()
	attachment.CreatedAt = now
	attachment.UpdatedAt = now

	query := `
		INSERT INTO attachments (id, company_id, file_name, content_type, size, object_key, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query, attachment.ID, attachment.CompanyID, attachment.FileName, attachment.ContentType,
		attachment.Size, attachment.ObjectKey, attachment.CreatedBy, attachment.UpdatedBy, attachment.CreatedAt, attachment.UpdatedAt)
	return common.ConflictFrom(err)
}

func (r *attachmentRepo) scan(row pgx.Row) (*models.Attachment, error) {
	attachment := &models.Attachment{}
	err := row.Scan(&attachment.ID, &attachment.CompanyID, &attachment.FileName, &attachment.ContentType,
		&attachment.Size, &attachment.ObjectKey, &attachment.CreatedBy, &attachment.UpdatedBy,
		&attachment.DeletedAt, &attachment.CreatedAt, &attachment.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return attachment, nil
}

func (r *attachmentRepo) GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1 AND deleted_at IS NULL`
	args := []any{id}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $2`
	}
	return r.scan(r.db.QueryRow(ctx, query, args...))
}

func (r *attachmentRepo) SoftDelete(ctx context.Context, scope tenancy.Scope, id uuid.UUID, deletedBy *uuid.UUID) error {
	query := `
		UPDATE attachments
		SET deleted_at = NOW(), updated_by = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	args := []any{id, deletedBy}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $3`
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *attachmentRepo) List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE deleted_at IS NULL`
	args := []any{}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $1`
	}
	args = append(args, limit, offset)
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*models.Attachment
	for rows.Next() {
		attachment, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}
	return attachments, rows.Err()
}
