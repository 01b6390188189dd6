package tenancy

import (
	"context"
	"errors"

	"backoffice/internal/common"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CompanyStore is the slice of the company repository the resolver needs.
type CompanyStore interface {
	GetByID(ctx context.Context, scope Scope, id uuid.UUID) (*models.Company, error)
}

// MembershipStore lists a user's companies. FirstActiveCompany returns the
// alphabetically-first (by company name) active company the user belongs to,
// or common.ErrNotFound when there is none.
type MembershipStore interface {
	FirstActiveCompany(ctx context.Context, userID uuid.UUID) (*models.Company, error)
}

// UserStore persists the resolved current company back onto the user.
type UserStore interface {
	SetCurrentCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error
}

// Resolver computes the active company for an authenticated user and sets the
// tenant context. It runs once per request, before any tenant-scoped access,
// and is idempotent for unchanged inputs.
type Resolver struct {
	companies   CompanyStore
	memberships MembershipStore
	users       UserStore
	log         zerolog.Logger
}

func NewResolver(companies CompanyStore, memberships MembershipStore, users UserStore, log zerolog.Logger) *Resolver {
	return &Resolver{
		companies:   companies,
		memberships: memberships,
		users:       users,
		log:         log,
	}
}

// Resolve determines the active company for user and sets it on t.
//
// Super-admins get the platform-wide context; unauthenticated requests get
// an empty one. Everyone else gets their remembered company if it is still
// active, or their alphabetically-first active membership, which is
// persisted back for O(1) resolution next time. A non-super-admin with zero
// active companies is left with no tenant: the request itself proceeds (they
// can still bootstrap their first company), but every tenant-requiring
// operation fails with ErrTenantUnavailable through the no-tenant scope.
func (r *Resolver) Resolve(ctx context.Context, t *Context, user *models.User) error {
	if user == nil {
		t.Set(nil)
		return nil
	}
	if user.IsSuperAdmin {
		t.SetPlatform()
		return nil
	}

	if user.CurrentCompanyID != nil {
		company, err := r.companies.GetByID(ctx, Platform(), *user.CurrentCompanyID)
		switch {
		case err == nil && company.Usable():
			t.Set(company)
			return nil
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return err
		}
		// Remembered company is gone or inactive; fall through to the
		// membership scan.
	}

	company, err := r.memberships.FirstActiveCompany(ctx, user.ID)
	if errors.Is(err, common.ErrNotFound) {
		t.Set(nil)
		r.log.Debug().Str("user_id", user.ID.String()).Msg("no active membership, request proceeds without a tenant")
		return nil
	}
	if err != nil {
		return err
	}

	if err := r.users.SetCurrentCompany(ctx, user.ID, &company.ID); err != nil {
		return err
	}
	user.CurrentCompanyID = &company.ID

	r.log.Debug().
		Str("user_id", user.ID.String()).
		Str("company_id", company.ID.String()).
		Msg("tenant context re-resolved to first active membership")

	t.Set(company)
	return nil
}
