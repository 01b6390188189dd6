package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a tenant-scoped master-data entity.
type Product struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CompanyID uuid.UUID  `json:"company_id" db:"company_id"`
	Name      string     `json:"name" db:"name"`
	SKU       string     `json:"sku" db:"sku"`
	UnitPrice float64    `json:"unit_price" db:"unit_price"`
	CreatedBy *uuid.UUID `json:"created_by" db:"created_by"`
	UpdatedBy *uuid.UUID `json:"updated_by" db:"updated_by"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

func (p *Product) AuditRef() AuditableRef {
	return AuditableRef{Type: AuditableProduct, ID: p.ID}
}

func (p *Product) AuditCompanyID() *uuid.UUID {
	if p.CompanyID == uuid.Nil {
		return nil
	}
	id := p.CompanyID
	return &id
}

func (p *Product) AuditValues() JSONB {
	return JSONB{
		"id":         p.ID,
		"company_id": p.CompanyID,
		"name":       p.Name,
		"sku":        p.SKU,
		"unit_price": p.UnitPrice,
		"created_by": p.CreatedBy,
		"updated_by": p.UpdatedBy,
		"deleted_at": p.DeletedAt,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}
