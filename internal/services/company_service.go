package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const slugMaxAttempts = 5

type CompanyService interface {
	Create(ctx context.Context, req *CreateCompanyRequest) (*models.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, req *UpdateCompanyRequest) (*models.Company, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
	SwitchCompany(ctx context.Context, user *models.User, companyID uuid.UUID) (*models.Company, error)
}

type companyService struct {
	tx          Transactor
	companies   repositories.CompanyRepository
	memberships repositories.MembershipRepository
	users       repositories.UserRepository
	roles       repositories.RoleRepository
	log         zerolog.Logger
}

func NewCompanyService(
	tx Transactor,
	companies repositories.CompanyRepository,
	memberships repositories.MembershipRepository,
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	log zerolog.Logger,
) CompanyService {
	return &companyService{
		tx:          tx,
		companies:   companies,
		memberships: memberships,
		users:       users,
		roles:       roles,
		log:         log,
	}
}

type CreateCompanyRequest struct {
	Name     string    `json:"name" validate:"required"`
	Timezone string    `json:"timezone"`
	Currency string    `json:"currency"`
	OwnerID  uuid.UUID `json:"owner_id" validate:"required"`
}

type UpdateCompanyRequest struct {
	ID       uuid.UUID
	Name     string `json:"name" validate:"required"`
	Timezone string `json:"timezone"`
	Currency string `json:"currency"`
}

var slugStripper = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripper.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Create persists the company and its owner membership atomically, then sets
// the owner's current company when they had none.
//
// Slug generation probes for an unused candidate and retries with a numeric
// suffix on collision. The probe only minimizes conflicts; the unique
// constraint on companies.slug is the real backstop, so a constraint
// violation from a racing request is treated as one more collision and
// retried with the next suffix.
func (s *companyService) Create(ctx context.Context, req *CreateCompanyRequest) (*models.Company, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}
	if req.OwnerID == uuid.Nil {
		return nil, errors.New("owner is required")
	}

	owner, err := s.users.GetByID(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	base := Slugify(req.Name)
	if base == "" {
		return nil, errors.New("name must contain at least one alphanumeric character")
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	var company *models.Company
	for attempt := 1; attempt <= slugMaxAttempts; attempt++ {
		slug := base
		if attempt > 1 {
			slug = fmt.Sprintf("%s-%d", base, attempt)
		}

		exists, err := s.companies.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		candidate := &models.Company{
			ID:       uuid.New(),
			Name:     req.Name,
			Slug:     slug,
			Timezone: timezone,
			Currency: currency,
			IsActive: true,
			OwnerID:  owner.ID,
		}

		err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
			if err := s.companies.WithTx(q).Create(ctx, candidate); err != nil {
				return nil, err
			}
			membership := &models.Membership{
				ID:        uuid.New(),
				CompanyID: candidate.ID,
				UserID:    owner.ID,
				IsOwner:   true,
			}
			if err := s.memberships.WithTx(q).Create(ctx, tenancy.ForCompany(candidate.ID), membership); err != nil {
				return nil, err
			}
			if owner.CurrentCompanyID == nil {
				if err := s.users.WithTx(q).SetCurrentCompany(ctx, owner.ID, &candidate.ID); err != nil {
					return nil, err
				}
			}
			return []Change{Created(candidate), Created(membership)}, nil
		})
		if errors.Is(err, common.ErrConflict) {
			s.log.Debug().Str("slug", slug).Msg("slug collision, retrying with suffix")
			continue
		}
		if err != nil {
			return nil, err
		}

		company = candidate
		break
	}
	if company == nil {
		return nil, fmt.Errorf("%w: could not find a free slug for %q", common.ErrConflict, base)
	}

	return company, nil
}

func (s *companyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.companies.GetByID(ctx, tenancy.ScopeFromContext(ctx), id)
}

func (s *companyService) Update(ctx context.Context, req *UpdateCompanyRequest) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, tenancy.ScopeFromContext(ctx), req.ID)
	if err != nil {
		return nil, err
	}

	before := company.AuditValues()
	company.Name = req.Name
	if req.Timezone != "" {
		company.Timezone = req.Timezone
	}
	if req.Currency != "" {
		company.Currency = req.Currency
	}

	err = s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.companies.WithTx(q).Update(ctx, company); err != nil {
			return nil, err
		}
		return []Change{Updated(company, before)}, nil
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// Deactivate soft-deletes the company and clears every dangling
// current-company reference pointing at it, so no user resolves onto a dead
// tenant. The platform-scope fetch below sees every company, so the caller
// must first prove they may touch this one: super-admins may, and so may an
// owner of the target company itself. A manage permission held in some other
// company grants nothing here.
func (s *companyService) Deactivate(ctx context.Context, id uuid.UUID) error {
	user, _ := common.CurrentUser(ctx)
	if user == nil {
		return common.ErrPermissionDenied
	}
	if !user.IsSuperAdmin {
		membership, err := s.memberships.GetByCompanyAndUser(ctx, id, user.ID)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrPermissionDenied
		}
		if err != nil {
			return err
		}
		if !membership.IsOwner {
			return common.ErrPermissionDenied
		}
	}

	company, err := s.companies.GetByID(ctx, tenancy.Platform(), id)
	if err != nil {
		return err
	}
	before := company.AuditValues()

	return s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		if err := s.companies.WithTx(q).SoftDelete(ctx, id); err != nil {
			return nil, err
		}
		if err := s.users.WithTx(q).ClearCurrentCompanyRefs(ctx, id); err != nil {
			return nil, err
		}
		return []Change{Deleted(company, before)}, nil
	})
}

func (s *companyService) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.companies.List(ctx, tenancy.ScopeFromContext(ctx), limit, offset)
}

// SwitchCompany changes the user's remembered tenant. Non-super-admins must
// hold a membership in the target company; the target must be usable.
func (s *companyService) SwitchCompany(ctx context.Context, user *models.User, companyID uuid.UUID) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, tenancy.Platform(), companyID)
	if err != nil {
		return nil, err
	}
	if !company.Usable() {
		return nil, common.ErrTenantUnavailable
	}

	if !user.IsSuperAdmin {
		if _, err := s.memberships.GetByCompanyAndUser(ctx, companyID, user.ID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrPermissionDenied
			}
			return nil, err
		}
	}

	if err := s.users.SetCurrentCompany(ctx, user.ID, &company.ID); err != nil {
		return nil, err
	}
	user.CurrentCompanyID = &company.ID
	return company, nil
}
