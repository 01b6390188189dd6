package repositories

import (
	"context"
	"errors"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/jackc/pgx/v5"
)

// The permission catalog is seeded once and never tenant-scoped.
type PermissionRepository interface {
	Seed(ctx context.Context, catalog []models.Permission) error
	GetBySlug(ctx context.Context, slug string) (*models.Permission, error)
	ListSlugs(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]*models.Permission, error)
}

type permissionRepo struct {
	db Querier
}

func NewPermissionRepo(db Querier) PermissionRepository {
	return &permissionRepo{db: db}
}

func (r *permissionRepo) Seed(ctx context.Context, catalog []models.Permission) error {
	query := `
		INSERT INTO permissions (id, name, slug, group_label, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (slug) DO NOTHING
	`
	for _, perm := range catalog {
		if _, err := r.db.Exec(ctx, query, perm.ID, perm.Name, perm.Slug, perm.Group); err != nil {
			return err
		}
	}
	return nil
}

func (r *permissionRepo) GetBySlug(ctx context.Context, slug string) (*models.Permission, error) {
	perm := &models.Permission{}
	query := `SELECT id, name, slug, group_label, created_at FROM permissions WHERE slug = $1`
	err := r.db.QueryRow(ctx, query, slug).Scan(&perm.ID, &perm.Name, &perm.Slug, &perm.Group, &perm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return perm, nil
}

func (r *permissionRepo) ListSlugs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT slug FROM permissions ORDER BY slug ASC`)
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

func (r *permissionRepo) List(ctx context.Context) ([]*models.Permission, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, group_label, created_at FROM permissions ORDER BY slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*models.Permission
	for rows.Next() {
		perm := &models.Permission{}
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Slug, &perm.Group, &perm.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}
