package models

import (
	"time"

	"github.com/google/uuid"
)

// Partner is a tenant-scoped master-data entity (customer or supplier). It is
// governed by the scoping layer and fully audited.
type Partner struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CompanyID uuid.UUID  `json:"company_id" db:"company_id"`
	Name      string     `json:"name" db:"name"`
	Email     *string    `json:"email,omitempty" db:"email"`
	Phone     *string    `json:"phone,omitempty" db:"phone"`
	Kind      string     `json:"kind" db:"kind"` // customer or supplier
	CreatedBy *uuid.UUID `json:"created_by" db:"created_by"`
	UpdatedBy *uuid.UUID `json:"updated_by" db:"updated_by"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

func (p *Partner) AuditRef() AuditableRef {
	return AuditableRef{Type: AuditablePartner, ID: p.ID}
}

func (p *Partner) AuditCompanyID() *uuid.UUID {
	if p.CompanyID == uuid.Nil {
		return nil
	}
	id := p.CompanyID
	return &id
}

func (p *Partner) AuditValues() JSONB {
	return JSONB{
		"id":         p.ID,
		"company_id": p.CompanyID,
		"name":       p.Name,
		"email":      p.Email,
		"phone":      p.Phone,
		"kind":       p.Kind,
		"created_by": p.CreatedBy,
		"updated_by": p.UpdatedBy,
		"deleted_at": p.DeletedAt,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}
