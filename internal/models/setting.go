package models

import (
	"time"

	"github.com/google/uuid"
)

// Setting is a key/value row. Scope is encoded by the two nullable references:
// both nil is platform-global, company set is company-level, both set is
// per-user-per-company. Unique on (company_id, user_id, key) with nulls
// treated as distinct scope values, never matched by wildcard.
type Setting struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CompanyID *uuid.UUID `json:"company_id" db:"company_id"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"`
	Key       string     `json:"key" db:"key"`
	Value     string     `json:"value" db:"value"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

func (s *Setting) AuditRef() AuditableRef {
	return AuditableRef{Type: AuditableSetting, ID: s.ID}
}

func (s *Setting) AuditCompanyID() *uuid.UUID { return s.CompanyID }

func (s *Setting) AuditValues() JSONB {
	return JSONB{
		"id":         s.ID,
		"company_id": s.CompanyID,
		"user_id":    s.UserID,
		"key":        s.Key,
		"value":      s.Value,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}
