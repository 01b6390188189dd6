// Package tenancy establishes which company a request is acting as and
// confines every data access to it. The holder is created fresh per request
// and carried on the request's context.Context; it is never shared across
// concurrent requests, so no locking is needed on the holder itself.
package tenancy

import (
	"context"

	"backoffice/internal/common"
	"backoffice/internal/models"
)

type holderKey struct{}

// Context holds at most one active company for the lifetime of a single
// request or operation. It also carries a per-request permission memo that
// must never outlive the request.
//
// An empty holder has two distinct meanings: platform-wide access (set for
// super-admins via SetPlatform) or no usable tenant at all. The two must not
// be conflated, or a member with zero memberships would inherit the
// unfiltered platform scope.
type Context struct {
	company  *models.Company
	platform bool
	perms    map[string][]string
}

// NewContext returns an empty tenant context.
func NewContext() *Context {
	return &Context{}
}

// Set replaces the held company. Called once per request, before any
// tenant-scoped entity access. Passing nil clears the context.
func (t *Context) Set(company *models.Company) {
	t.company = company
	t.platform = false
	t.perms = nil
}

// SetPlatform marks the holder as acting platform-wide with no company.
// Reserved for super-admins.
func (t *Context) SetPlatform() {
	t.company = nil
	t.platform = true
	t.perms = nil
}

// IsPlatform reports whether the holder carries platform-wide access.
func (t *Context) IsPlatform() bool {
	return t.platform
}

// Get returns the held company, if any. Side-effect free.
func (t *Context) Get() (*models.Company, bool) {
	return t.company, t.company != nil
}

// Require returns the held company or fails when no tenant is established.
func (t *Context) Require() (*models.Company, error) {
	if t.company == nil {
		return nil, common.ErrContextNotEstablished
	}
	return t.company, nil
}

// CachedPermissions returns a memoized permission set for key. The memo is
// scoped to this holder, which is scoped to one request.
func (t *Context) CachedPermissions(key string) ([]string, bool) {
	slugs, ok := t.perms[key]
	return slugs, ok
}

// CachePermissions memoizes a resolved permission set for key.
func (t *Context) CachePermissions(key string, slugs []string) {
	if t.perms == nil {
		t.perms = make(map[string][]string)
	}
	t.perms[key] = slugs
}

// WithContext installs the tenant holder on ctx.
func WithContext(ctx context.Context, t *Context) context.Context {
	return context.WithValue(ctx, holderKey{}, t)
}

// FromContext returns the tenant holder installed on ctx, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	t, ok := ctx.Value(holderKey{}).(*Context)
	return t, ok
}

// ActiveCompany returns the company ctx is acting as, if one is set.
func ActiveCompany(ctx context.Context) (*models.Company, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return nil, false
	}
	return t.Get()
}

// RequireCompany returns the active company or ErrContextNotEstablished.
// Used by code paths that must never run without a tenant.
func RequireCompany(ctx context.Context) (*models.Company, error) {
	t, ok := FromContext(ctx)
	if !ok {
		return nil, common.ErrContextNotEstablished
	}
	return t.Require()
}
