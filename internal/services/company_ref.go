package services

import (
	"context"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
)

// authorizeCompanyRef gates an explicit company reference on a request. No
// reference, or a reference to the caller's own active company, passes.
// Anything else is the act-on-behalf-of path, reserved for super-admins: a
// member authorized in company A must not aim a write at company B.
func authorizeCompanyRef(ctx context.Context, user *models.User, companyID *uuid.UUID) error {
	if companyID == nil || *companyID == uuid.Nil {
		return nil
	}
	if user != nil && user.IsSuperAdmin {
		return nil
	}
	if company, ok := tenancy.ActiveCompany(ctx); ok && company.ID == *companyID {
		return nil
	}
	return common.ErrPermissionDenied
}
