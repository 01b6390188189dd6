package middleware

import (
	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

type RBACMiddleware struct {
	perms services.PermissionService
}

func NewRBACMiddleware(perms services.PermissionService) *RBACMiddleware {
	return &RBACMiddleware{perms: perms}
}

// RequirePermission gates a route on the effective permission set of the
// authenticated user against their active company.
func (m *RBACMiddleware) RequirePermission(slug string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			user, ok := common.CurrentUser(ctx)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			if err := m.perms.RequirePermission(ctx, user, slug, nil); err != nil {
				return common.SendError(c, err)
			}
			return next(c)
		}
	}
}
