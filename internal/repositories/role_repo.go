package repositories

import (
	"context"
	"errors"
	"fmt"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Roles with a nil company_id are global templates visible to every tenant;
// company roles are visible only under their own scope.
type RoleRepository interface {
	WithTx(q Querier) RoleRepository
	Create(ctx context.Context, scope tenancy.Scope, role *models.Role) error
	GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Role, error)
	GetGlobalBySlug(ctx context.Context, slug string) (*models.Role, error)
	Update(ctx context.Context, scope tenancy.Scope, role *models.Role) error
	Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error
	List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Role, error)
}

type roleRepo struct {
	db Querier
}

func NewRoleRepo(db Querier) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) WithTx(q Querier) RoleRepository {
	return &roleRepo{db: q}
}

const roleColumns = `id, company_id, name, slug, description, created_at, updated_at`

// Create stamps the scope's company onto a non-global role. Global templates
// (company_id already nil under the platform scope) are allowed through.
func (r *roleRepo) Create(ctx context.Context, scope tenancy.Scope, role *models.Role) error {
	if !scope.IsPlatform() {
		companyID, err := scope.StampCompany(role.CompanyID)
		if err != nil {
			return err
		}
		role.CompanyID = &companyID
	}

	query := `
		INSERT INTO roles (id, company_id, name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.CompanyID, role.Name, role.Slug, role.Description)
	return common.ConflictFrom(err)
}

func (r *roleRepo) scan(row pgx.Row) (*models.Role, error) {
	role := &models.Role{}
	err := row.Scan(&role.ID, &role.CompanyID, &role.Name, &role.Slug, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`
	args := []any{id}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND (company_id = $2 OR company_id IS NULL)`
	}
	return r.scan(r.db.QueryRow(ctx, query, args...))
}

func (r *roleRepo) GetGlobalBySlug(ctx context.Context, slug string) (*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE slug = $1 AND company_id IS NULL`
	return r.scan(r.db.QueryRow(ctx, query, slug))
}

func (r *roleRepo) Update(ctx context.Context, scope tenancy.Scope, role *models.Role) error {
	query := `UPDATE roles SET name = $1, slug = $2, description = $3, updated_at = NOW() WHERE id = $4`
	args := []any{role.Name, role.Slug, role.Description, role.ID}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $5`
	}
	_, err := r.db.Exec(ctx, query, args...)
	return common.ConflictFrom(err)
}

func (r *roleRepo) Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	query := `DELETE FROM roles WHERE id = $1`
	args := []any{id}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $2`
	}
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *roleRepo) List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles`
	args := []any{}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` WHERE company_id = $1 OR company_id IS NULL`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.CompanyID, &role.Name, &role.Slug, &role.Description,
			&role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
