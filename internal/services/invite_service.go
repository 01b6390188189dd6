package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInviteConsumed: the token has already been accepted. A second
	// acceptance of the same token must never create another membership.
	ErrInviteConsumed = errors.New("invite already accepted")

	// ErrInviteExpired: the token's expiry has passed; it is permanently inert.
	ErrInviteExpired = errors.New("invite expired")
)

const defaultInviteTTL = 7 * 24 * time.Hour

type InviteService interface {
	Create(ctx context.Context, req *CreateInviteRequest) (*models.Invite, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
	Accept(ctx context.Context, req *AcceptInviteRequest) (*models.User, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, deliveryErr string) error
	ListPending(ctx context.Context) ([]*models.Invite, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type inviteService struct {
	tx          Transactor
	invites     repositories.InviteRepository
	users       repositories.UserRepository
	memberships repositories.MembershipRepository
	roles       repositories.RoleRepository
	log         zerolog.Logger
}

func NewInviteService(
	tx Transactor,
	invites repositories.InviteRepository,
	users repositories.UserRepository,
	memberships repositories.MembershipRepository,
	roles repositories.RoleRepository,
	log zerolog.Logger,
) InviteService {
	return &inviteService{
		tx:          tx,
		invites:     invites,
		users:       users,
		memberships: memberships,
		roles:       roles,
		log:         log,
	}
}

type CreateInviteRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Name      *string    `json:"name"`
	Role      string     `json:"role" validate:"required"`
	CompanyID *uuid.UUID `json:"company_id"`
	ExpiresIn *time.Duration
	CreatedBy uuid.UUID
}

type AcceptInviteRequest struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *inviteService) Create(ctx context.Context, req *CreateInviteRequest) (*models.Invite, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	switch req.Role {
	case models.InviteRolePlatformAdmin, models.InviteRoleCompanyOwner, models.InviteRoleCompanyMember:
	default:
		return nil, fmt.Errorf("unknown invite role %q", req.Role)
	}

	creator, _ := common.CurrentUser(ctx)
	// A platform_admin invite yields super-admin on acceptance, so only a
	// super-admin may mint one. Company invites may only target the
	// creator's own tenant; aiming one at another company is the
	// act-on-behalf-of path and equally reserved for super-admins.
	if req.Role == models.InviteRolePlatformAdmin && (creator == nil || !creator.IsSuperAdmin) {
		return nil, common.ErrPermissionDenied
	}
	if err := authorizeCompanyRef(ctx, creator, req.CompanyID); err != nil {
		return nil, err
	}

	invite := &models.Invite{
		ID:        uuid.New(),
		Email:     email,
		Name:      req.Name,
		Role:      req.Role,
		CompanyID: req.CompanyID,
		Status:    models.InviteStatusPending,
		CreatedBy: req.CreatedBy,
	}

	if invite.RequiresCompany() {
		if invite.CompanyID == nil {
			if company, ok := tenancy.ActiveCompany(ctx); ok {
				id := company.ID
				invite.CompanyID = &id
			}
		}
		if invite.CompanyID == nil {
			return nil, common.ErrCompanyRequired
		}
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	invite.Token = token

	ttl := defaultInviteTTL
	if req.ExpiresIn != nil {
		ttl = *req.ExpiresIn
	}
	expiresAt := time.Now().Add(ttl)
	invite.ExpiresAt = &expiresAt

	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *inviteService) GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	return s.invites.GetByID(ctx, tenancy.ScopeFromContext(ctx), id)
}

// Accept consumes the token exactly once. The whole flow is one transaction:
// the row lock on the invite serializes racing acceptances, so the loser of a
// race observes accepted_at set and is rejected. User creation, membership
// creation and the acceptance timestamp commit together or not at all.
func (s *inviteService) Accept(ctx context.Context, req *AcceptInviteRequest) (*models.User, error) {
	var user *models.User

	err := s.tx.Mutate(ctx, func(ctx context.Context, q repositories.Querier) ([]Change, error) {
		invites := s.invites.WithTx(q)
		users := s.users.WithTx(q)
		memberships := s.memberships.WithTx(q)

		invite, err := invites.GetByTokenForUpdate(ctx, req.Token)
		if err != nil {
			return nil, err
		}
		if invite.AcceptedAt != nil {
			return nil, ErrInviteConsumed
		}
		if invite.Expired(time.Now()) {
			return nil, ErrInviteExpired
		}

		user, err = users.GetByEmail(ctx, invite.Email)
		if errors.Is(err, common.ErrNotFound) {
			user, err = s.createInvitedUser(ctx, users, invite, req)
		}
		if err != nil {
			return nil, err
		}

		var changes []Change

		if invite.Role == models.InviteRolePlatformAdmin && !user.IsSuperAdmin {
			if err := users.SetSuperAdmin(ctx, user.ID, true); err != nil {
				return nil, err
			}
			user.IsSuperAdmin = true
		}

		if invite.RequiresCompany() {
			membership, created, err := s.attachMembership(ctx, memberships, invite, user)
			if err != nil {
				return nil, err
			}
			if created {
				changes = append(changes, Created(membership))
			}
			if user.CurrentCompanyID == nil {
				if err := users.SetCurrentCompany(ctx, user.ID, invite.CompanyID); err != nil {
					return nil, err
				}
				user.CurrentCompanyID = invite.CompanyID
			}
		}

		if err := invites.MarkAccepted(ctx, invite.ID, time.Now()); err != nil {
			return nil, err
		}
		return changes, nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *inviteService) createInvitedUser(ctx context.Context, users repositories.UserRepository, invite *models.Invite, req *AcceptInviteRequest) (*models.User, error) {
	name := req.Name
	if name == "" && invite.Name != nil {
		name = *invite.Name
	}
	if name == "" {
		name = invite.Email
	}
	if req.Password == "" {
		return nil, errors.New("password is required for new accounts")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        invite.Email,
		PasswordHash: string(hash),
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *inviteService) attachMembership(ctx context.Context, memberships repositories.MembershipRepository, invite *models.Invite, user *models.User) (*models.Membership, bool, error) {
	membership := &models.Membership{
		ID:        uuid.New(),
		CompanyID: *invite.CompanyID,
		UserID:    user.ID,
		IsOwner:   invite.Role == models.InviteRoleCompanyOwner,
	}

	if invite.Role == models.InviteRoleCompanyMember {
		role, err := s.roles.GetGlobalBySlug(ctx, "member")
		if err == nil {
			membership.RoleID = &role.ID
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, false, err
		}
	}

	created, err := memberships.Upsert(ctx, membership)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// Existing membership wins; the invite still gets consumed.
		existing, err := memberships.GetByCompanyAndUser(ctx, membership.CompanyID, user.ID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return membership, true, nil
}

func (s *inviteService) MarkSent(ctx context.Context, id uuid.UUID) error {
	return s.invites.MarkSent(ctx, id)
}

func (s *inviteService) MarkFailed(ctx context.Context, id uuid.UUID, deliveryErr string) error {
	return s.invites.MarkFailed(ctx, id, deliveryErr)
}

func (s *inviteService) ListPending(ctx context.Context) ([]*models.Invite, error) {
	return s.invites.ListPending(ctx, tenancy.ScopeFromContext(ctx))
}

// SweepExpired removes unaccepted invites whose expiry has passed. Run by the
// background scheduler.
func (s *inviteService) SweepExpired(ctx context.Context) (int64, error) {
	removed, err := s.invites.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("expired invites swept")
	}
	return removed, nil
}
