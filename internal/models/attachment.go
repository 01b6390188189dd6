package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a tenant-scoped file reference. The payload lives in object
// storage under ObjectKey; the row carries ownership and audit attribution.
type Attachment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CompanyID   uuid.UUID  `json:"company_id" db:"company_id"`
	FileName    string     `json:"file_name" db:"file_name"`
	ContentType string     `json:"content_type" db:"content_type"`
	Size        int64      `json:"size" db:"size"`
	ObjectKey   string     `json:"-" db:"object_key"`
	CreatedBy   *uuid.UUID `json:"created_by" db:"created_by"`
	UpdatedBy   *uuid.UUID `json:"updated_by" db:"updated_by"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func (a *Attachment) AuditRef() AuditableRef {
	return AuditableRef{Type: AuditableAttachment, ID: a.ID}
}

func (a *Attachment) AuditCompanyID() *uuid.UUID {
	if a.CompanyID == uuid.Nil {
		return nil
	}
	id := a.CompanyID
	return &id
}

func (a *Attachment) AuditValues() JSONB {
	return JSONB{
		"id":           a.ID,
		"company_id":   a.CompanyID,
		"file_name":    a.FileName,
		"content_type": a.ContentType,
		"size":         a.Size,
		"created_by":   a.CreatedBy,
		"updated_by":   a.UpdatedBy,
		"deleted_at":   a.DeletedAt,
		"created_at":   a.CreatedAt,
		"updated_at":   a.UpdatedAt,
	}
}
