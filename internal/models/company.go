package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant: the unit of data isolation. Every tenant-scoped row
// carries a company_id foreign key.
type Company struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Slug      string     `json:"slug" db:"slug"`
	Timezone  string     `json:"timezone" db:"timezone"`
	Currency  string     `json:"currency" db:"currency"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	OwnerID   uuid.UUID  `json:"owner_id" db:"owner_id"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Usable reports whether the company may serve as an active tenant context.
func (c *Company) Usable() bool {
	return c != nil && c.IsActive && c.DeletedAt == nil
}

func (c *Company) AuditRef() AuditableRef {
	return AuditableRef{Type: AuditableCompany, ID: c.ID}
}

func (c *Company) AuditCompanyID() *uuid.UUID {
	id := c.ID
	return &id
}

func (c *Company) AuditValues() JSONB {
	return JSONB{
		"id":         c.ID,
		"name":       c.Name,
		"slug":       c.Slug,
		"timezone":   c.Timezone,
		"currency":   c.Currency,
		"is_active":  c.IsActive,
		"owner_id":   c.OwnerID,
		"deleted_at": c.DeletedAt,
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}
