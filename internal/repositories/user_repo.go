package repositories

import (
	"context"
	"errors"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Users are platform-level rows; tenancy attaches through memberships, so no
// scope parameter appears here.
type UserRepository interface {
	WithTx(q Querier) UserRepository
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetCurrentCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error
	ClearCurrentCompanyRefs(ctx context.Context, companyID uuid.UUID) error
	SetSuperAdmin(ctx context.Context, userID uuid.UUID, super bool) error
}

type userRepo struct {
	db Querier
}

func NewUserRepo(db Querier) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) WithTx(q Querier) UserRepository {
	return &userRepo{db: q}
}

const userColumns = `id, name, email, password_hash, current_company_id, is_super_admin, created_at, updated_at`

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, current_company_id, is_super_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.CurrentCompanyID, user.IsSuperAdmin)
	return common.ConflictFrom(err)
}

func (r *userRepo) scan(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.CurrentCompanyID, &user.IsSuperAdmin, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, user.Name, user.Email, user.PasswordHash, user.ID)
	return common.ConflictFrom(err)
}

func (r *userRepo) SetCurrentCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error {
	query := `UPDATE users SET current_company_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, companyID, userID)
	return err
}

// ClearCurrentCompanyRefs nulls the remembered company on every user pointing
// at it. Runs when a company is deactivated or deleted so no dangling
// reference is treated as valid.
func (r *userRepo) ClearCurrentCompanyRefs(ctx context.Context, companyID uuid.UUID) error {
	query := `UPDATE users SET current_company_id = NULL, updated_at = NOW() WHERE current_company_id = $1`
	_, err := r.db.Exec(ctx, query, companyID)
	return err
}

func (r *userRepo) SetSuperAdmin(ctx context.Context, userID uuid.UUID, super bool) error {
	query := `UPDATE users SET is_super_admin = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, super, userID)
	return err
}
