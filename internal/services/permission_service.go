package services

import (
	"context"
	"errors"
	"sort"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PermissionService computes effective permission sets per (user, company).
// Results are re-derived per call; the only caching is a per-request memo on
// the tenancy holder, which dies with the request.
type PermissionService interface {
	PermissionsForCompany(ctx context.Context, user *models.User, companyID *uuid.UUID) ([]string, error)
	HasPermission(ctx context.Context, user *models.User, slug string, companyID *uuid.UUID) (bool, error)
	RequirePermission(ctx context.Context, user *models.User, slug string, companyID *uuid.UUID) error
}

type permissionService struct {
	permissions     repositories.PermissionRepository
	memberships     repositories.MembershipRepository
	rolePermissions repositories.RolePermissionRepository
	log             zerolog.Logger
}

func NewPermissionService(
	permissions repositories.PermissionRepository,
	memberships repositories.MembershipRepository,
	rolePermissions repositories.RolePermissionRepository,
	log zerolog.Logger,
) PermissionService {
	return &permissionService{
		permissions:     permissions,
		memberships:     memberships,
		rolePermissions: rolePermissions,
		log:             log,
	}
}

// PermissionsForCompany resolves the effective permission slugs for user
// against companyID (defaulting to the user's current company). Precedence,
// first match wins:
//
//  1. super-admin: the full catalog minus the master-data manage slugs
//  2. owner membership: the full catalog
//  3. role membership: the role's attached slugs
//  4. otherwise: empty
func (s *permissionService) PermissionsForCompany(ctx context.Context, user *models.User, companyID *uuid.UUID) ([]string, error) {
	if user == nil {
		return nil, nil
	}

	if user.IsSuperAdmin {
		return s.cached(ctx, memoKey(user.ID, nil), func() ([]string, error) {
			catalog, err := s.permissions.ListSlugs(ctx)
			if err != nil {
				return nil, err
			}
			slugs := make([]string, 0, len(catalog))
			for _, slug := range catalog {
				if _, excluded := models.MasterDataManageSlugs[slug]; excluded {
					continue
				}
				slugs = append(slugs, slug)
			}
			return slugs, nil
		})
	}

	if companyID == nil {
		companyID = user.CurrentCompanyID
	}
	if companyID == nil {
		return nil, nil
	}

	return s.cached(ctx, memoKey(user.ID, companyID), func() ([]string, error) {
		membership, err := s.memberships.GetByCompanyAndUser(ctx, *companyID, user.ID)
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if membership.IsOwner {
			return s.permissions.ListSlugs(ctx)
		}
		if membership.RoleID == nil {
			return nil, nil
		}
		return s.rolePermissions.ListSlugsByRole(ctx, *membership.RoleID)
	})
}

func (s *permissionService) HasPermission(ctx context.Context, user *models.User, slug string, companyID *uuid.UUID) (bool, error) {
	slugs, err := s.PermissionsForCompany(ctx, user, companyID)
	if err != nil {
		return false, err
	}
	i := sort.SearchStrings(slugs, slug)
	return i < len(slugs) && slugs[i] == slug, nil
}

// RequirePermission is the mutation-boundary check: a miss is an explicit
// denial, never a silent downgrade.
func (s *permissionService) RequirePermission(ctx context.Context, user *models.User, slug string, companyID *uuid.UUID) error {
	ok, err := s.HasPermission(ctx, user, slug, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrPermissionDenied
	}
	return nil
}

// cached memoizes resolve's result on the request's tenancy holder. Without a
// holder (background jobs) every call re-derives.
func (s *permissionService) cached(ctx context.Context, key string, resolve func() ([]string, error)) ([]string, error) {
	holder, ok := tenancy.FromContext(ctx)
	if !ok {
		slugs, err := resolve()
		if err != nil {
			return nil, err
		}
		sort.Strings(slugs)
		return slugs, nil
	}

	if slugs, hit := holder.CachedPermissions(key); hit {
		return slugs, nil
	}
	slugs, err := resolve()
	if err != nil {
		return nil, err
	}
	sort.Strings(slugs)
	holder.CachePermissions(key, slugs)
	return slugs, nil
}

func memoKey(userID uuid.UUID, companyID *uuid.UUID) string {
	if companyID == nil {
		return userID.String() + ":platform"
	}
	return userID.String() + ":" + companyID.String()
}
