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

type ProductRepository interface {
	WithTx(q Querier) ProductRepository
	Create(ctx context.Context, scope tenancy.Scope, product *models.Product) error
	GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, scope tenancy.Scope, sku string) (*models.Product, error)
	Update(ctx context.Context, scope tenancy.Scope, product *models.Product) error
	SoftDelete(ctx context.Context, scope tenancy.Scope, id uuid.UUID, deletedBy *uuid.UUID) error
	Restore(ctx context.Context, scope tenancy.Scope, id uuid.UUID, updatedBy *uuid.UUID) error
	List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Product, error)
}

type productRepo struct {
	db Querier
}

func NewProductRepo(db Querier) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) WithTx(q Querier) ProductRepository {
	return &productRepo{db: q}
}

const productColumns = `id, company_id, name, sku, unit_price, created_by, updated_by, deleted_at, created_at, updated_at`

func (r *productRepo) Create(ctx context.Context, scope tenancy.Scope, product *models.Product) error {
	var explicit *uuid.UUID
	if product.CompanyID != uuid.Nil {
		explicit = &product.CompanyID
	}
	companyID, err := scope.StampCompany(explicit)
	if err != nil {
		return err
	}
	product.CompanyID = companyID

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (id, company_id, name, sku, unit_price, created_by, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.Exec(ctx, query, product.ID, product.CompanyID, product.Name, product.SKU, product.UnitPrice,
		product.CreatedBy, product.UpdatedBy, product.CreatedAt, product.UpdatedAt)
	return common.ConflictFrom(err)
}

func (r *productRepo) scan(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.CompanyID, &product.Name, &product.SKU, &product.UnitPrice,
		&product.CreatedBy, &product.UpdatedBy, &product.DeletedAt, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) GetByID(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`
	args := []any{id}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $2`
	}
	return r.scan(r.db.QueryRow(ctx, query, args...))
}

// GetBySKU requires a tenant scope: SKUs are unique per company, not globally.
func (r *productRepo) GetBySKU(ctx context.Context, scope tenancy.Scope, sku string) (*models.Product, error) {
	companyID, ok := scope.CompanyID()
	if !ok {
		return nil, common.ErrCompanyRequired
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1 AND company_id = $2 AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(ctx, query, sku, companyID))
}

func (r *productRepo) Update(ctx context.Context, scope tenancy.Scope, product *models.Product) error {
	product.UpdatedAt = time.Now()
	query := `
		UPDATE products
		SET name = $1, sku = $2, unit_price = $3, updated_by = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`
	args := []any{product.Name, product.SKU, product.UnitPrice, product.UpdatedBy, product.UpdatedAt, product.ID}
	if companyID, ok := scope.CompanyID(); ok {
		args = append(args, companyID)
		query += ` AND company_id = $7`
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

func (r *productRepo) SoftDelete(ctx context.Context, scope tenancy.Scope, id uuid.UUID, deletedBy *uuid.UUID) error {
	query := `
		UPDATE products
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

func (r *productRepo) Restore(ctx context.Context, scope tenancy.Scope, id uuid.UUID, updatedBy *uuid.UUID) error {
	query := `
		UPDATE products
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

func (r *productRepo) List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE deleted_at IS NULL`
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

	var products []*models.Product
	for rows.Next() {
		product, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
