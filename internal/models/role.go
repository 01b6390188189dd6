package models

import (
	"time"

	"github.com/google/uuid"
)

// Role carries a set of permissions. CompanyID == nil marks a global template
// (e.g. "owner", "member") usable by any tenant; otherwise the role belongs to
// one company.
type Role struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CompanyID   *uuid.UUID `json:"company_id" db:"company_id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	Description *string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Global reports whether the role is a platform-wide template.
func (r *Role) Global() bool { return r.CompanyID == nil }

func (r *Role) AuditRef() AuditableRef {
	return AuditableRef{Type: AuditableRole, ID: r.ID}
}

func (r *Role) AuditCompanyID() *uuid.UUID { return r.CompanyID }

func (r *Role) AuditValues() JSONB {
	return JSONB{
		"id":          r.ID,
		"company_id":  r.CompanyID,
		"name":        r.Name,
		"slug":        r.Slug,
		"description": r.Description,
		"created_at":  r.CreatedAt,
		"updated_at":  r.UpdatedAt,
	}
}

// RolePermission is the role-to-permission join row.
type RolePermission struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RoleID       uuid.UUID `json:"role_id" db:"role_id"`
	PermissionID uuid.UUID `json:"permission_id" db:"permission_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
