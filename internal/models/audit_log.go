package models

import (
	"time"

	"github.com/google/uuid"
)

// JSONB represents a PostgreSQL JSONB value.
type JSONB map[string]interface{}

// Audit actions, one per observable lifecycle transition.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionRestored = "restored"
)

// AuditableType discriminates the polymorphic auditable reference. Each value
// names exactly one table.
type AuditableType string

const (
	AuditableCompany    AuditableType = "company"
	AuditableMembership AuditableType = "membership"
	AuditableRole       AuditableType = "role"
	AuditableSetting    AuditableType = "setting"
	AuditablePartner    AuditableType = "partner"
	AuditableProduct    AuditableType = "product"
	AuditableAttachment AuditableType = "attachment"
)

// AuditableRef points at the audited row: a type tag plus its id.
type AuditableRef struct {
	Type AuditableType `json:"type"`
	ID   uuid.UUID     `json:"id"`
}

// Auditable is implemented by every audit-enabled entity. AuditCompanyID may
// return nil for rows created outside any tenant (the recorder then falls
// back to the active tenant context, or skips).
type Auditable interface {
	AuditRef() AuditableRef
	AuditCompanyID() *uuid.UUID
	AuditValues() JSONB
}

// AuditLog is an immutable record of one lifecycle transition on a
// tenant-scoped entity. Rows are never updated or deleted by application code.
type AuditLog struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	CompanyID     uuid.UUID     `json:"company_id" db:"company_id"`
	UserID        *uuid.UUID    `json:"user_id" db:"user_id"` // nil for system-originated changes
	AuditableType AuditableType `json:"auditable_type" db:"auditable_type"`
	AuditableID   uuid.UUID     `json:"auditable_id" db:"auditable_id"`
	Action        string        `json:"action" db:"action"`
	Changes       JSONB         `json:"changes" db:"changes"`
	Metadata      JSONB         `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// AuditLogFilters narrows audit log queries.
type AuditLogFilters struct {
	AuditableType *AuditableType `json:"auditable_type"`
	AuditableID   *uuid.UUID     `json:"auditable_id"`
	Action        *string        `json:"action"`
	UserID        *uuid.UUID     `json:"user_id"`
	StartDate     *time.Time     `json:"start_date"`
	EndDate       *time.Time     `json:"end_date"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
}
