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

type PartnerRepository interface {
	WithTx(q Querier) PartnerRepository
	Create(ctx context.Context, scope tenancy.Scope, partner *models.Partner) error
	GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Partner, error)
	Update(ctx context.Context, scope tenancy.Scope, partner *models.Partner) error
	SoftDelete(ctx context.Context, scope tenancy.Scope, id uuid.UUID, deletedBy *uuid.UUID) error
	Restore(ctx context.Context, scope tenancy.Scope, id uuid.UUID, updatedBy *uuid.UUID) error
	List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Partner, error)
}

type partnerRepo struct {
	db Querier
}

func NewPartnerRepo(db Querier) PartnerRepository {
	return &partnerRepo{db: db}
}

func (r *partnerRepo) WithTx(q Querier) PartnerRepository {
	return &partnerRepo{db: q}
}

const partnerColumns = `id, company_id, name, email, phone, kind, created_by, updated_by, deleted_at, created_at, updated_at`

func (r *partnerRepo) Create(ctx context.Context, scope tenancy.Scope, partner *models.Partner) error {
	var explicit *uuid.UUID
	if partner.CompanyID != uuid.Nil {
		explicit = &partner.CompanyID
	}
	companyID, err := scope.StampCompany(explicit)
	if err != nil {
		return err
	}
	partner.CompanyID = companyID

	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	now := time.Now()
	partner.CreatedAt = now
	partner.UpdatedAt = now

	query := `
		INSERT INTO partners (id, company_id, name, email, phone, kind, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query, partner.ID, partner.CompanyID, partner.Name, partner.Email, partner.Phone,
		partner.Kind, partner.CreatedBy, partner.UpdatedBy, partner.CreatedAt, partner.UpdatedAt)
	return common.ConflictFrom(err)
}

func (r *partnerRepo) scan(row pgx.Row) (*models.Partner, error) {
	partner := &models.Partner{}
	err := row.Scan(&partner.ID, &partner.CompanyID, &partner.Name, &partner.Email, &partner.Phone, &partner.Kind,
		&partner.CreatedBy, &partner.UpdatedBy, &partner.DeletedAt, &partner.CreatedAt, &partner.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return partner, nil
}

func (r *partnerRepo) GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = $1 AND deleted_at IS NULL`
	args := []any{id}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $2`
	}
	return r.scan(r.db.QueryRow(ctx, query, args...))
}

func (r *partnerRepo) Update(ctx context.Context, scope tenancy.Scope, partner *models.Partner) error {
	partner.UpdatedAt = time.Now()
	query := `
		UPDATE partners
		SET name = $1, email = $2, phone = $3, kind = $4, updated_by = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	args := []any{partner.Name, partner.Email, partner.Phone, partner.Kind, partner.UpdatedBy, partner.UpdatedAt, partner.ID}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $8`
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return common.ConflictFrom(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *partnerRepo) SoftDelete(ctx context.Context, scope tenancy.Scope, id uuid.UUID, deletedBy *uuid.UUID) error {
	query := `
		UPDATE partners
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

func (r *partnerRepo) Restore(ctx context.Context, scope tenancy.Scope, id uuid.UUID, updatedBy *uuid.UUID) error {
	query := `
		UPDATE partners
		SET deleted_at = NULL, updated_by = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL
	`
	args := []any{id, updatedBy}
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

func (r *partnerRepo) List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE deleted_at IS NULL`
	args := []any{}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $1`
	}
	args = append(args, limit, offset)
	query += ` ORDER BY name ASC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []*models.Partner
	for rows.Next() {
		partner, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}
