package models

import (
	"time"

	"github.com/google/uuid"
)

// User accounts are platform-level; tenancy is attached through memberships.
// CurrentCompanyID remembers the last tenant the user acted as and may be
// cleared when that company is deactivated or removed.
type User struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"` // Never serialize in JSON
	CurrentCompanyID *uuid.UUID `json:"current_company_id" db:"current_company_id"`
	IsSuperAdmin     bool       `json:"is_super_admin" db:"is_super_admin"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}
