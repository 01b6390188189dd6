package services

import (
	"context"
	"errors"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
)

type ProductService interface {
	Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Update(ctx context.Context, req *UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
}

type productService struct {
	tx       Transactor
	products repositories.ProductRepository
	perms    PermissionService
}

func NewProductService(tx Transactor, products repositories.ProductRepository, perms PermissionService) ProductService {
	return &productService{tx: tx, products: products, perms: perms}
}

type CreateProductRequest struct {
	Name      string     `json:"name" validate:"required"`
	SKU       string     `json:"sku" validate:"required"`
	UnitPrice float64    `json:"unit_price" validate:"gte=0"`
	CompanyID *uuid.UUID `json:"company_id"`
}

type UpdateProductRequest struct {
	ID        uuid.UUID
	Name      string  `json:"name" validate:"required"`
	SKU       string  `json:"sku" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

func (s *productService) requireManage(ctx context.Context) (*models.User, error) {
	user, _ := common.CurrentUser(ctx)
	if err := s.perms.RequirePermission(ctx, user, models.PermProductsManage, nil); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *productService) requireView(ctx context.Context) error {
	user, _ := common.CurrentUser(ctx)
	return s.perms.RequirePermission(ctx, user, models.PermProductsView, nil)
}

func (s *productService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	user, err := s.requireManage(ctx)
	if err != nil {
		return nil, err
	}
	if req.Name == "" || req.SKU == "" {
		return nil, errors.New("name and sku are required")
	}
	if err := authorizeCompanyRef(ctx, user, req.CompanyID); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:        uuid.New(),
		Name:      req.Name,
		SKU:       req.SKU,
		UnitPrice: req.UnitPrice,
	}
	if req.CompanyID != nil {
		product.CompanyID = *req.CompanyID
	}
	if user != nil {
		id := user.ID
		product.CreatedBy = &id
		product.UpdatedBy = &id
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.products.WithTx(q).Create(ctx, scope, product); err != nil {
			return nil, err
		}
		return []Change{Created(product)}, nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if err := s.requireView(ctx); err != nil {
		return nil, err
	}
	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, scope, id)
}

func (s *productService) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if err := s.requireView(ctx); err != nil {
		return nil, err
	}
	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	return s.products.GetBySKU(ctx, scope, sku)
}

func (s *productService) Update(ctx context.Context, req *UpdateProductRequest) (*models.Product, error) {
	user, err := s.requireManage(ctx)
	if err != nil {
		return nil, err
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, scope, req.ID)
	if err != nil {
		return nil, err
	}

	before := product.AuditValues()
	product.Name = req.Name
	product.SKU = req.SKU
	product.UnitPrice = req.UnitPrice
	if user != nil {
		id := user.ID
		product.UpdatedBy = &id
	}

	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.products.WithTx(q).Update(ctx, scope, product); err != nil {
			return nil, err
		}
		return []Change{Updated(product, before)}, nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.requireManage(ctx)
	if err != nil {
		return err
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return err
	}
	product, err := s.products.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	before := product.AuditValues()

	var deletedBy *uuid.UUID
	if user != nil {
		uid := user.ID
		deletedBy = &uid
	}

	return s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.products.WithTx(q).SoftDelete(ctx, scope, id, deletedBy); err != nil {
			return nil, err
		}
		return []Change{Deleted(product, before)}, nil
	})
}

func (s *productService) Restore(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	user, err := s.requireManage(ctx)
	if err != nil {
		return nil, err
	}

	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	var updatedBy *uuid.UUID
	if user != nil {
		uid := user.ID
		updatedBy = &uid
	}

	var product *models.Product
	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		products := s.products.WithTx(q)
		if err := products.Restore(ctx, scope, id, updatedBy); err != nil {
			return nil, err
		}
		product, err = products.GetByID(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		return []Change{Restored(product)}, nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	if err := s.requireView(ctx); err != nil {
		return nil, err
	}
	scope, err := tenancy.RequireScope(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.products.List(ctx, scope, limit, offset)
}
