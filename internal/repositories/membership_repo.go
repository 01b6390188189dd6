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

type MembershipRepository interface {
	WithTx(q Querier) MembershipRepository
	Create(ctx context.Context, scope tenancy.Scope, membership *models.Membership) error
	Upsert(ctx context.Context, membership *models.Membership) (created bool, err error)
	GetByCompanyAndUser(ctx context.Context, companyID, userID uuid.UUID) (*models.Membership, error)
	ListByCompany(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Membership, error)
	FirstActiveCompany(ctx context.Context, userID uuid.UUID) (*models.Company, error)
	SetRole(ctx context.Context, scope tenancy.Scope, membershipID uuid.UUID, roleID *uuid.UUID) error
	Delete(ctx context.Context, scope tenancy.Scope, membershipID uuid.UUID) error
}

type membershipRepo struct {
	db Querier
}

func NewMembershipRepo(db Querier) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) WithTx(q Querier) MembershipRepository {
	return &membershipRepo{db: q}
}

const membershipColumns = `id, company_id, user_id, role_id, is_owner, created_at, updated_at`

func (r *membershipRepo) Create(ctx context.Context, scope tenancy.Scope, membership *models.Membership) error {
	var explicit *uuid.UUID
	if membership.CompanyID != uuid.Nil {
		explicit = &membership.CompanyID
	}
	companyID, err := scope.StampCompany(explicit)
	if err != nil {
		return err
	}
	membership.CompanyID = companyID

	query := `
		INSERT INTO memberships (id, company_id, user_id, role_id, is_owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, membership.ID, membership.CompanyID, membership.UserID, membership.RoleID, membership.IsOwner)
	return common.ConflictFrom(err)
}

// Upsert inserts the membership unless one already exists for
// (company, user); the unique constraint guarantees a single row even when
// two acceptances race. Reports whether a row was actually inserted.
func (r *membershipRepo) Upsert(ctx context.Context, membership *models.Membership) (bool, error) {
	query := `
		INSERT INTO memberships (id, company_id, user_id, role_id, is_owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (company_id, user_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, membership.ID, membership.CompanyID, membership.UserID, membership.RoleID, membership.IsOwner)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *membershipRepo) GetByCompanyAndUser(ctx context.Context, companyID, userID uuid.UUID) (*models.Membership, error) {
	membership := &models.Membership{}
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE company_id = $1 AND user_id = $2`
	err := r.db.QueryRow(ctx, query, companyID, userID).Scan(&membership.ID, &membership.CompanyID,
		&membership.UserID, &membership.RoleID, &membership.IsOwner, &membership.CreatedAt, &membership.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (r *membershipRepo) ListByCompany(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships`
	args := []any{}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` WHERE company_id = $1`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		membership := &models.Membership{}
		if err := rows.Scan(&membership.ID, &membership.CompanyID, &membership.UserID,
			&membership.RoleID, &membership.IsOwner, &membership.CreatedAt, &membership.UpdatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}
	return memberships, rows.Err()
}

// FirstActiveCompany returns the alphabetically-first active company the user
// belongs to. Fallback path of the tenant context resolver.
func (r *membershipRepo) FirstActiveCompany(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.timezone, c.currency, c.is_active, c.owner_id, c.deleted_at, c.created_at, c.updated_at
		FROM companies c
		JOIN memberships m ON m.company_id = c.id
		WHERE m.user_id = $1 AND c.is_active = true AND c.deleted_at IS NULL
		ORDER BY c.name ASC
		LIMIT 1
	`
	company := &models.Company{}
	err := r.db.QueryRow(ctx, query, userID).Scan(&company.ID, &company.Name, &company.Slug,
		&company.Timezone, &company.Currency, &company.IsActive, &company.OwnerID,
		&company.DeletedAt, &company.CreatedAt, &company.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (r *membershipRepo) SetRole(ctx context.Context, scope tenancy.Scope, membershipID uuid.UUID, roleID *uuid.UUID) error {
	query := `UPDATE memberships SET role_id = $1, updated_at = NOW() WHERE id = $2`
	args := []any{roleID, membershipID}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $3`
	}
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *membershipRepo) Delete(ctx context.Context, scope tenancy.Scope, membershipID uuid.UUID) error {
	query := `DELETE FROM memberships WHERE id = $1`
	args := []any{membershipID}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $2`
	}
	_, err := r.db.Exec(ctx, query, args...)
	return err
}
