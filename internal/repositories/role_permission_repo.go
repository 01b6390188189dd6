package repositories

import (
	"context"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/google/uuid"
)

type RolePermissionRepository interface {
	WithTx(q Querier) RolePermissionRepository
	Attach(ctx context.Context, roleID, permissionID uuid.UUID) error
	Detach(ctx context.Context, roleID, permissionID uuid.UUID) error
	ListSlugsByRole(ctx context.Context, roleID uuid.UUID) ([]string, error)
	ListByRole(ctx context.Context, roleID uuid.UUID) ([]*models.RolePermission, error)
}

type rolePermissionRepo struct {
	db Querier
}

func NewRolePermissionRepo(db Querier) RolePermissionRepository {
	return &rolePermissionRepo{db: db}
}

func (r *rolePermissionRepo) WithTx(q Querier) RolePermissionRepository {
	return &rolePermissionRepo{db: q}
}

func (r *rolePermissionRepo) Attach(ctx context.Context, roleID, permissionID uuid.UUID) error {
	query := `
		INSERT INTO role_permissions (id, role_id, permission_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, uuid.New(), roleID, permissionID)
	return common.ConflictFrom(err)
}

func (r *rolePermissionRepo) Detach(ctx context.Context, roleID, permissionID uuid.UUID) error {
	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`
	_, err := r.db.Exec(ctx, query, roleID, permissionID)
	return err
}

// ListSlugsByRole resolves a role's permission slugs in one join.
func (r *rolePermissionRepo) ListSlugsByRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	query := `
		SELECT p.slug
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.slug ASC
	`
	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

func (r *rolePermissionRepo) ListByRole(ctx context.Context, roleID uuid.UUID) ([]*models.RolePermission, error) {
	query := `
		SELECT id, role_id, permission_id, created_at
		FROM role_permissions
		WHERE role_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rolePermissions []*models.RolePermission
	for rows.Next() {
		rp := &models.RolePermission{}
		if err := rows.Scan(&rp.ID, &rp.RoleID, &rp.PermissionID, &rp.CreatedAt); err != nil {
			return nil, err
		}
		rolePermissions = append(rolePermissions, rp)
	}
	return rolePermissions, rows.Err()
}
