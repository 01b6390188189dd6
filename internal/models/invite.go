package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite roles: what the invitee becomes on acceptance.
const (
	InviteRolePlatformAdmin = "platform_admin"
	InviteRoleCompanyOwner  = "company_owner"
	InviteRoleCompanyMember = "company_member"
)

// Invite delivery statuses. Delivery itself happens outside this core; only
// the state is tracked here.
const (
	InviteStatusPending = "pending"
	InviteStatusSent    = "sent"
	InviteStatusFailed  = "failed"
)

// Invite onboards a user by token. A token is consumed exactly once: once
// accepted or expired it is permanently inert.
type Invite struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Email      string     `json:"email" db:"email"`
	Name       *string    `json:"name,omitempty" db:"name"`
	Role       string     `json:"role" db:"role"`
	CompanyID  *uuid.UUID `json:"company_id" db:"company_id"`
	Token      string     `json:"-" db:"token"` // Never serialize in JSON
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	Status     string     `json:"status" db:"status"`
	Attempts   int        `json:"attempts" db:"attempts"`
	LastError  *string    `json:"last_error,omitempty" db:"last_error"`
	CreatedBy  uuid.UUID  `json:"created_by" db:"created_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the invite's expiry has passed at t.
func (i *Invite) Expired(t time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(t)
}

// RequiresCompany reports whether the invite role implies tenant membership.
func (i *Invite) RequiresCompany() bool {
	return i.Role == InviteRoleCompanyOwner || i.Role == InviteRoleCompanyMember
}
