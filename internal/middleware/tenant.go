package middleware

import (
	"backoffice/internal/common"
	"backoffice/internal/tenancy"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// TenantMiddleware installs a fresh tenant holder per request and resolves
// the active company before any handler runs. Must be registered after
// authentication.
type TenantMiddleware struct {
	resolver *tenancy.Resolver
	log      zerolog.Logger
}

func NewTenantMiddleware(resolver *tenancy.Resolver, log zerolog.Logger) *TenantMiddleware {
	return &TenantMiddleware{resolver: resolver, log: log}
}

func (m *TenantMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		holder := tenancy.NewContext()
		ctx = tenancy.WithContext(ctx, holder)
		ctx = common.WithRequestMeta(ctx, common.RequestMeta{
			IP:        c.RealIP(),
			UserAgent: c.Request().UserAgent(),
		})

		user, _ := common.CurrentUser(ctx)
		if err := m.resolver.Resolve(ctx, holder, user); err != nil {
			c.SetRequest(c.Request().WithContext(ctx))
			return common.SendError(c, err)
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
