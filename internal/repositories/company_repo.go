package repositories

import (
	"context"
	"errors"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CompanyRepository interface {
	WithTx(q Querier) CompanyRepository
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Company, error)
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, company *models.Company) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Company, error)
}

type companyRepo struct {
	db Querier
}

func NewCompanyRepo(db Querier) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) WithTx(q Querier) CompanyRepository {
	return &companyRepo{db: q}
}

const companyColumns = `id, name, slug, timezone, currency, is_active, owner_id, deleted_at, created_at, updated_at`

func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, slug, timezone, currency, is_active, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, company.ID, company.Name, company.Slug, company.Timezone, company.Currency, company.IsActive, company.OwnerID)
	return common.ConflictFrom(err)
}

func (r *companyRepo) scan(row pgx.Row) (*models.Company, error) {
	company := &models.Company{}
	err := row.Scan(&company.ID, &company.Name, &company.Slug, &company.Timezone, &company.Currency,
		&company.IsActive, &company.OwnerID, &company.DeletedAt, &company.CreatedAt, &company.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

// GetByID honors the scope: under a tenant scope only that company itself is
// visible, under the platform scope any company is.
func (r *companyRepo) GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Company, error) {
	if companyID, ok := scope.CompanyID(); ok && companyID != id {
		return nil, common.ErrNotFound
	}
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *companyRepo) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE slug = $1`
	return r.scan(r.db.QueryRow(ctx, query, slug))
}

func (r *companyRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *companyRepo) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $1, slug = $2, timezone = $3, currency = $4, is_active = $5, owner_id = $6, updated_at = NOW()
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query, company.Name, company.Slug, company.Timezone, company.Currency,
		company.IsActive, company.OwnerID, company.ID)
	return common.ConflictFrom(err)
}

func (r *companyRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE companies
		SET is_active = false, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *companyRepo) List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE deleted_at IS NULL`
	args := []any{}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND id = $1`
	}
	args = append(args, limit, offset)
	query += ` ORDER BY name ASC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		if err := rows.Scan(&company.ID, &company.Name, &company.Slug, &company.Timezone, &company.Currency,
			&company.IsActive, &company.OwnerID, &company.DeletedAt, &company.CreatedAt, &company.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}
