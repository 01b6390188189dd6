package services

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
)

type RoleService interface {
	Create(ctx context.Context, req *CreateRoleRequest) (*models.Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	Update(ctx context.Context, req *UpdateRoleRequest) (*models.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Role, error)
	AttachPermission(ctx context.Context, roleID uuid.UUID, slug string) error
	DetachPermission(ctx context.Context, roleID uuid.UUID, slug string) error
	PermissionSlugs(ctx context.Context, roleID uuid.UUID) ([]string, error)
	AssignToMembership(ctx context.Context, membershipID uuid.UUID, roleID *uuid.UUID) error
}

type roleService struct {
	tx              Transactor
	roles           repositories.RoleRepository
	permissions     repositories.PermissionRepository
	rolePermissions repositories.RolePermissionRepository
	memberships     repositories.MembershipRepository
}

func NewRoleService(
	tx Transactor,
	roles repositories.RoleRepository,
	permissions repositories.PermissionRepository,
	rolePermissions repositories.RolePermissionRepository,
	memberships repositories.MembershipRepository,
) RoleService {
	return &roleService{
		tx:              tx,
		roles:           roles,
		permissions:     permissions,
		rolePermissions: rolePermissions,
		memberships:     memberships,
	}
}

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Permissions []string `json:"permissions"`
}

type UpdateRoleRequest struct {
	ID          uuid.UUID
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// Create makes a company-scoped role under the active tenant (or a global
// template under the platform scope) and attaches the named permissions, all
// in one transaction.
func (s *roleService) Create(ctx context.Context, req *CreateRoleRequest) (*models.Role, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}

	role := &models.Role{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
	}

	scope := tenancy.ScopeFromContext(ctx)
	err := s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.roles.WithTx(q).Create(ctx, scope, role); err != nil {
			return nil, err
		}
		rolePerms := s.rolePermissions.WithTx(q)
		for _, slug := range req.Permissions {
			perm, err := s.permissions.GetBySlug(ctx, slug)
			if err != nil {
				return nil, err
			}
			if err := rolePerms.Attach(ctx, role.ID, perm.ID); err != nil {
				return nil, err
			}
		}
		return []Change{Created(role)}, nil
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.roles.GetByID(ctx, tenancy.ScopeFromContext(ctx), id)
}

// mutableRole loads a role for mutation. Global templates are readable from
// every tenant, but changing one changes every tenant's effective permission
// sets, so mutating them takes the platform scope.
func (s *roleService) mutableRole(ctx context.Context, scope tenancy.Scope, roleID uuid.UUID) (*models.Role, error) {
	role, err := s.roles.GetByID(ctx, scope, roleID)
	if err != nil {
		return nil, err
	}
	if role.CompanyID == nil && !scope.IsPlatform() {
		return nil, common.ErrPermissionDenied
	}
	return role, nil
}

func (s *roleService) Update(ctx context.Context, req *UpdateRoleRequest) (*models.Role, error) {
	scope := tenancy.ScopeFromContext(ctx)
	role, err := s.mutableRole(ctx, scope, req.ID)
	if err != nil {
		return nil, err
	}

	before := role.AuditValues()
	role.Name = req.Name
	role.Description = req.Description

	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.roles.WithTx(q).Update(ctx, scope, role); err != nil {
			return nil, err
		}
		return []Change{Updated(role, before)}, nil
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService) Delete(ctx context.Context, id uuid.UUID) error {
	scope := tenancy.ScopeFromContext(ctx)
	role, err := s.mutableRole(ctx, scope, id)
	if err != nil {
		return err
	}
	before := role.AuditValues()

	return s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.roles.WithTx(q).Delete(ctx, scope, id); err != nil {
			return nil, err
		}
		return []Change{Deleted(role, before)}, nil
	})
}

func (s *roleService) List(ctx context.Context, limit, offset int) ([]*models.Role, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.roles.List(ctx, tenancy.ScopeFromContext(ctx), limit, offset)
}

func (s *roleService) AttachPermission(ctx context.Context, roleID uuid.UUID, slug string) error {
	if _, err := s.mutableRole(ctx, tenancy.ScopeFromContext(ctx), roleID); err != nil {
		return err
	}
	perm, err := s.permissions.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.rolePermissions.Attach(ctx, roleID, perm.ID)
}

func (s *roleService) DetachPermission(ctx context.Context, roleID uuid.UUID, slug string) error {
	if _, err := s.mutableRole(ctx, tenancy.ScopeFromContext(ctx), roleID); err != nil {
		return err
	}
	perm, err := s.permissions.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.rolePermissions.Detach(ctx, roleID, perm.ID)
}

func (s *roleService) PermissionSlugs(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	return s.rolePermissions.ListSlugsByRole(ctx, roleID)
}

func (s *roleService) AssignToMembership(ctx context.Context, membershipID uuid.UUID, roleID *uuid.UUID) error {
	scope := tenancy.ScopeFromContext(ctx)
	if roleID != nil {
		if _, err := s.roles.GetByID(ctx, scope, *roleID); err != nil {
			return err
		}
	}
	return s.memberships.SetRole(ctx, scope, membershipID, roleID)
}
