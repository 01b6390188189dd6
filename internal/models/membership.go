package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership joins a user to a company. Unique on (company_id, user_id).
// An owner membership grants the full permission set regardless of RoleID.
type Membership struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CompanyID uuid.UUID  `json:"company_id" db:"company_id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	RoleID    *uuid.UUID `json:"role_id" db:"role_id"`
	IsOwner   bool       `json:"is_owner" db:"is_owner"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

func (m *Membership) AuditRef() AuditableRef {
	return AuditableRef{Type: AuditableMembership, ID: m.ID}
}

func (m *Membership) AuditCompanyID() *uuid.UUID {
	id := m.CompanyID
	return &id
}

func (m *Membership) AuditValues() JSONB {
	return JSONB{
		"id":         m.ID,
		"company_id": m.CompanyID,
		"user_id":    m.UserID,
		"role_id":    m.RoleID,
		"is_owner":   m.IsOwner,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
	}
}
