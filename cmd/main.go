package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice/internal/caching"
	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/handlers"
	"backoffice/internal/jobs/background"
	appmiddleware "backoffice/internal/middleware"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/services"
	"backoffice/internal/storage"
	"backoffice/internal/tenancy"
	"backoffice/pkg/database"
	"backoffice/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cache := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)

	objectStore, err := storage.NewMinioStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		log.Warn().Err(err).Msg("could not ensure attachment bucket")
	}

	// Repositories
	companyRepo := repositories.NewCompanyRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	permissionRepo := repositories.NewPermissionRepo(pool)
	rolePermissionRepo := repositories.NewRolePermissionRepo(pool)
	settingRepo := repositories.NewSettingRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)
	inviteRepo := repositories.NewInviteRepo(pool)
	partnerRepo := repositories.NewPartnerRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	attachmentRepo := repositories.NewAttachmentRepo(pool)

	if err := seed(ctx, permissionRepo, roleRepo, rolePermissionRepo, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed catalog")
	}

	// Audit capture and transactional mutation
	recorder := services.NewAuditRecorder(auditLogsRepo, log)
	mutator := services.NewMutator(pool, recorder)

	// Core services
	resolver := tenancy.NewResolver(companyRepo, membershipRepo, userRepo, log)
	permissionService := services.NewPermissionService(permissionRepo, membershipRepo, rolePermissionRepo, log)
	authService := services.NewAuthService(userRepo, cache, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, log)
	companyService := services.NewCompanyService(mutator, companyRepo, membershipRepo, userRepo, roleRepo, log)
	inviteService := services.NewInviteService(mutator, inviteRepo, userRepo, membershipRepo, roleRepo, log)
	settingService := services.NewSettingService(mutator, settingRepo, log)
	roleService := services.NewRoleService(mutator, roleRepo, permissionRepo, rolePermissionRepo, membershipRepo)
	auditLogsService := services.NewAuditLogsService(auditLogsRepo)
	partnerService := services.NewPartnerService(mutator, partnerRepo, permissionService)
	productService := services.NewProductService(mutator, productRepo, permissionService)
	attachmentService := services.NewAttachmentService(mutator, attachmentRepo, objectStore, permissionService, log)

	// Middleware
	authMW, err := buildAuthMiddleware(cfg, authService, userRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth middleware")
	}
	tenantMW := appmiddleware.NewTenantMiddleware(resolver, log)
	rbacMW := appmiddleware.NewRBACMiddleware(permissionService)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	registerRoutes(e, authMW, tenantMW, rbacMW,
		handlers.NewHealthHandlers(pool, cache),
		handlers.NewAuthHandlers(authService),
		handlers.NewCompanyHandlers(companyService),
		handlers.NewInviteHandlers(inviteService),
		handlers.NewRoleHandlers(roleService),
		handlers.NewSettingHandlers(settingService),
		handlers.NewAuditLogsHandlers(auditLogsService),
		handlers.NewPartnerHandlers(partnerService),
		handlers.NewProductHandlers(productService),
		handlers.NewAttachmentHandlers(attachmentService),
	)

	scheduler, err := background.NewJobScheduler(inviteService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()

	go func() {
		if err := e.Start(cfg.HTTP.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := scheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
}

func buildAuthMiddleware(cfg *config.Config, authService services.AuthService, userRepo repositories.UserRepository) (*appmiddleware.AuthMiddleware, error) {
	if cfg.Auth.JWKSURL != "" {
		return appmiddleware.NewAuthMiddlewareWithJWKS(authService, userRepo, cfg.Auth.JWKSURL)
	}
	return appmiddleware.NewAuthMiddleware(authService, userRepo), nil
}

func registerRoutes(
	e *echo.Echo,
	authMW *appmiddleware.AuthMiddleware,
	tenantMW *appmiddleware.TenantMiddleware,
	rbacMW *appmiddleware.RBACMiddleware,
	health *handlers.HealthHandlers,
	auth *handlers.AuthHandlers,
	companies *handlers.CompanyHandlers,
	invites *handlers.InviteHandlers,
	roles *handlers.RoleHandlers,
	settings *handlers.SettingHandlers,
	auditLogs *handlers.AuditLogsHandlers,
	partners *handlers.PartnerHandlers,
	products *handlers.ProductHandlers,
	attachments *handlers.AttachmentHandlers,
) {
	e.GET("/health", health.HealthCheck)

	e.POST("/auth/register", auth.Register)
	e.POST("/auth/login", auth.Login)
	e.POST("/auth/refresh", auth.Refresh)
	e.POST("/invites/accept", invites.Accept)

	// Everything below runs authenticated under a resolved tenant context.
	api := e.Group("/api/v1", authMW.Authenticate, tenantMW.Resolve)

	api.GET("/auth/me", auth.Me)
	api.POST("/auth/logout", auth.Logout)

	api.POST("/companies", companies.Create)
	api.GET("/companies", companies.List)
	api.GET("/companies/:id", companies.Get)
	api.PUT("/companies/:id", companies.Update, rbacMW.RequirePermission(models.PermCompaniesManage))
	api.DELETE("/companies/:id", companies.Deactivate, rbacMW.RequirePermission(models.PermCompaniesManage))
	api.POST("/companies/:id/switch", companies.Switch)

	api.POST("/invites", invites.Create, rbacMW.RequirePermission(models.PermInvitesManage))
	api.GET("/invites/pending", invites.ListPending, rbacMW.RequirePermission(models.PermInvitesManage))
	api.GET("/invites/:id", invites.Get, rbacMW.RequirePermission(models.PermInvitesManage))

	api.POST("/roles", roles.Create, rbacMW.RequirePermission(models.PermRolesManage))
	api.GET("/roles", roles.List)
	api.GET("/roles/:id", roles.Get)
	api.PUT("/roles/:id", roles.Update, rbacMW.RequirePermission(models.PermRolesManage))
	api.DELETE("/roles/:id", roles.Delete, rbacMW.RequirePermission(models.PermRolesManage))
	api.POST("/roles/:id/permissions", roles.AttachPermission, rbacMW.RequirePermission(models.PermRolesManage))
	api.DELETE("/roles/:id/permissions/:slug", roles.DetachPermission, rbacMW.RequirePermission(models.PermRolesManage))
	api.PUT("/memberships/:id/role", roles.AssignToMembership, rbacMW.RequirePermission(models.PermRolesManage))

	api.PUT("/settings", settings.Set, rbacMW.RequirePermission(models.PermSettingsManage))
	api.GET("/settings", settings.List)
	api.GET("/settings/:key", settings.Resolve)
	api.DELETE("/settings/:key", settings.Delete, rbacMW.RequirePermission(models.PermSettingsManage))

	api.GET("/audit-logs", auditLogs.List, rbacMW.RequirePermission(models.PermAuditView))
	api.GET("/audit-logs/:id", auditLogs.Get, rbacMW.RequirePermission(models.PermAuditView))

	api.POST("/partners", partners.Create)
	api.GET("/partners", partners.List)
	api.GET("/partners/:id", partners.Get)
	api.PUT("/partners/:id", partners.Update)
	api.DELETE("/partners/:id", partners.Delete)
	api.POST("/partners/:id/restore", partners.Restore)

	api.POST("/products", products.Create)
	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.GET("/products/sku/:sku", products.GetBySKU)
	api.PUT("/products/:id", products.Update)
	api.DELETE("/products/:id", products.Delete)
	api.POST("/products/:id/restore", products.Restore)

	api.POST("/attachments", attachments.Upload)
	api.GET("/attachments", attachments.List)
	api.GET("/attachments/:id", attachments.Get)
	api.GET("/attachments/:id/download", attachments.Download)
	api.DELETE("/attachments/:id", attachments.Delete)
}

// seed installs the permission catalog and the global role templates. All
// inserts are conflict-free no-ops on restart.
func seed(
	ctx context.Context,
	permissions repositories.PermissionRepository,
	roles repositories.RoleRepository,
	rolePermissions repositories.RolePermissionRepository,
	log zerolog.Logger,
) error {
	if err := permissions.Seed(ctx, models.PermissionCatalog()); err != nil {
		return err
	}

	templates := []struct {
		name  string
		slug  string
		perms []string
	}{
		{name: "Owner", slug: "owner", perms: nil}, // owners bypass roles entirely
		{name: "Member", slug: "member", perms: []string{
			models.PermPartnersView,
			models.PermProductsView,
			models.PermTaxesView,
			models.PermCurrenciesView,
			models.PermUOMsView,
			models.PermPriceListsView,
			models.PermAttachmentsView,
		}},
	}

	for _, t := range templates {
		role, err := roles.GetGlobalBySlug(ctx, t.slug)
		if errors.Is(err, common.ErrNotFound) {
			role = &models.Role{ID: uuid.New(), Name: t.name, Slug: t.slug}
			if err := roles.Create(ctx, tenancy.Platform(), role); err != nil {
				return err
			}
			log.Info().Str("slug", t.slug).Msg("seeded global role template")
		} else if err != nil {
			return err
		}

		for _, slug := range t.perms {
			perm, err := permissions.GetBySlug(ctx, slug)
			if err != nil {
				return err
			}
			if err := rolePermissions.Attach(ctx, role.ID, perm.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
