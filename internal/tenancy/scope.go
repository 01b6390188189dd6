package tenancy

import (
	"context"

	"backoffice/internal/common"

	"github.com/google/uuid"
)

// Scope names the tenant a repository call is confined to. The zero value is
// the privileged platform scope: no company filter is applied and all tenants
// are visible. That privilege is intentional (super-admin paths) and must be
// gated by permission checks at the call site, not here.
type Scope struct {
	companyID *uuid.UUID
	none      bool
}

// Platform returns the unfiltered, cross-tenant scope.
func Platform() Scope {
	return Scope{}
}

// ForCompany returns a scope confined to one company.
func ForCompany(id uuid.UUID) Scope {
	return Scope{companyID: &id}
}

// NoTenant returns the scope of a caller with no usable tenant and no
// platform privilege. Filtered reads match no tenant row and stamped writes
// fail, so a member with zero active memberships cannot reach any company's
// data.
func NoTenant() Scope {
	return Scope{none: true}
}

// ScopeFromContext derives the scope from the active tenant context: the
// active company when one is set, the platform scope for platform-wide
// holders, and the no-tenant scope for a holder with neither. Without a
// holder at all (background jobs, seeding) the platform scope applies.
func ScopeFromContext(ctx context.Context) Scope {
	t, ok := FromContext(ctx)
	if !ok {
		return Platform()
	}
	if company, has := t.Get(); has {
		return ForCompany(company.ID)
	}
	if t.IsPlatform() {
		return Platform()
	}
	return NoTenant()
}

// RequireScope is ScopeFromContext for operations that cannot proceed
// without a tenant or platform privilege.
func RequireScope(ctx context.Context) (Scope, error) {
	scope := ScopeFromContext(ctx)
	if scope.none {
		return Scope{}, common.ErrTenantUnavailable
	}
	return scope, nil
}

// CompanyID returns the confining company, reporting whether one is set.
// The no-tenant scope confines to the nil uuid, which no tenant row carries.
func (s Scope) CompanyID() (uuid.UUID, bool) {
	if s.none {
		return uuid.Nil, true
	}
	if s.companyID == nil {
		return uuid.Nil, false
	}
	return *s.companyID, true
}

// IsPlatform reports whether the scope applies no tenant filter.
func (s Scope) IsPlatform() bool {
	return s.companyID == nil && !s.none
}

// StampCompany resolves the company id a new tenant-scoped row must carry.
// An explicitly supplied reference always wins (the super-admin
// act-on-behalf-of path); otherwise the scope's company is stamped. When
// neither exists the write must not happen: no tenant-scoped row may ever be
// created without a company association.
func (s Scope) StampCompany(explicit *uuid.UUID) (uuid.UUID, error) {
	if s.none {
		return uuid.Nil, common.ErrTenantUnavailable
	}
	if explicit != nil && *explicit != uuid.Nil {
		return *explicit, nil
	}
	if s.companyID != nil {
		return *s.companyID, nil
	}
	return uuid.Nil, common.ErrCompanyRequired
}
