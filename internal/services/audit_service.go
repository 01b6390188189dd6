package services

import (
	"context"
	"reflect"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fields never written into a changes payload. The tenant key and the
// actor/timestamp stamps would be redundant with the audit row's own columns.
var auditIgnoredFields = map[string]struct{}{
	"company_id": {},
	"created_at": {},
	"updated_at": {},
	"deleted_at": {},
	"created_by": {},
	"updated_by": {},
}

// Change describes one lifecycle transition on an audit-enabled entity.
// Before and After are attribute snapshots taken around the mutation: Before
// is nil for creations, After is nil for deletions.
type Change struct {
	Action string
	Entity models.Auditable
	Before models.JSONB
	After  models.JSONB
}

// Created builds the change for a freshly persisted entity.
func Created(entity models.Auditable) Change {
	return Change{Action: models.ActionCreated, Entity: entity, After: entity.AuditValues()}
}

// Updated builds the change for an in-place update. The caller snapshots
// Before prior to applying the update.
func Updated(entity models.Auditable, before models.JSONB) Change {
	return Change{Action: models.ActionUpdated, Entity: entity, Before: before, After: entity.AuditValues()}
}

// Deleted builds the change for a soft delete, carrying the pre-deletion state.
func Deleted(entity models.Auditable, before models.JSONB) Change {
	return Change{Action: models.ActionDeleted, Entity: entity, Before: before}
}

// Restored builds the change for a soft-delete reversal.
func Restored(entity models.Auditable) Change {
	return Change{Action: models.ActionRestored, Entity: entity, After: entity.AuditValues()}
}

// AuditRecorder persists audit rows inside the mutation's own transaction.
type AuditRecorder struct {
	auditLogs repositories.AuditLogsRepository
	log       zerolog.Logger
}

func NewAuditRecorder(auditLogs repositories.AuditLogsRepository, log zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{auditLogs: auditLogs, log: log}
}

// Record writes one audit row for ch on q, which must be the same transaction
// that performed the mutation. Tenant attribution prefers the entity's own
// company reference, then the active tenant context; with neither, recording
// is silently skipped (a row with no tenant is meaningless). A zero-diff
// update is likewise a no-op. Any store-level failure propagates so the
// surrounding transaction rolls back with it.
func (r *AuditRecorder) Record(ctx context.Context, q repositories.Querier, ch Change) error {
	ref := ch.Entity.AuditRef()

	companyID, ok := r.resolveTenant(ctx, ch.Entity)
	if !ok {
		r.log.Debug().
			Str("auditable_type", string(ref.Type)).
			Str("auditable_id", ref.ID.String()).
			Msg("audit skipped: no tenant attribution")
		return nil
	}

	changes, ok := buildChanges(ch)
	if !ok {
		return nil
	}

	entry := &models.AuditLog{
		CompanyID:     companyID,
		UserID:        r.resolveActor(ctx, ch),
		AuditableType: ref.Type,
		AuditableID:   ref.ID,
		Action:        ch.Action,
		Changes:       changes,
		CreatedAt:     time.Now(),
	}
	if meta, ok := common.RequestMetaFrom(ctx); ok {
		entry.Metadata = models.JSONB{"ip": meta.IP, "user_agent": meta.UserAgent}
	}

	return r.auditLogs.WithTx(q).Create(ctx, entry)
}

func (r *AuditRecorder) resolveTenant(ctx context.Context, entity models.Auditable) (uuid.UUID, bool) {
	if id := entity.AuditCompanyID(); id != nil {
		return *id, true
	}
	if company, ok := tenancy.ActiveCompany(ctx); ok {
		return company.ID, true
	}
	return uuid.Nil, false
}

// resolveActor prefers the authenticated actor; absent one (background jobs),
// it falls back to the entity's own actor stamps.
func (r *AuditRecorder) resolveActor(ctx context.Context, ch Change) *uuid.UUID {
	if user, ok := common.CurrentUser(ctx); ok {
		id := user.ID
		return &id
	}

	values := ch.After
	if values == nil {
		values = ch.Before
	}
	if ch.Action == models.ActionCreated {
		return actorStamp(values, "created_by")
	}
	if id := actorStamp(values, "updated_by"); id != nil {
		return id
	}
	return actorStamp(values, "created_by")
}

func actorStamp(values models.JSONB, key string) *uuid.UUID {
	switch v := values[key].(type) {
	case *uuid.UUID:
		return v
	case uuid.UUID:
		if v == uuid.Nil {
			return nil
		}
		return &v
	default:
		return nil
	}
}

// buildChanges computes the changes payload for ch, reporting false when no
// row should be emitted (zero-diff update).
func buildChanges(ch Change) (models.JSONB, bool) {
	switch ch.Action {
	case models.ActionUpdated:
		before, after := diffValues(ch.Before, ch.After)
		if len(before) == 0 && len(after) == 0 {
			return nil, false
		}
		return models.JSONB{"before": before, "after": after}, true
	case models.ActionDeleted:
		return filterIgnored(ch.Before), true
	default:
		return filterIgnored(ch.After), true
	}
}

func filterIgnored(values models.JSONB) models.JSONB {
	out := models.JSONB{}
	for key, value := range values {
		if _, skip := auditIgnoredFields[key]; skip {
			continue
		}
		out[key] = value
	}
	return out
}

// diffValues returns only the fields whose value actually changed.
func diffValues(before, after models.JSONB) (models.JSONB, models.JSONB) {
	oldVals := models.JSONB{}
	newVals := models.JSONB{}
	for key, afterVal := range after {
		if _, skip := auditIgnoredFields[key]; skip {
			continue
		}
		beforeVal, existed := before[key]
		if existed && reflect.DeepEqual(beforeVal, afterVal) {
			continue
		}
		if existed {
			oldVals[key] = beforeVal
		}
		newVals[key] = afterVal
	}
	return oldVals, newVals
}
