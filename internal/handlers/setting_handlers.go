package handlers

import (
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"
	"backoffice/internal/tenancy"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type SettingHandlers struct {
	settingService services.SettingService
}

func NewSettingHandlers(settingService services.SettingService) *SettingHandlers {
	return &SettingHandlers{settingService: settingService}
}

// Set handles PUT /settings
func (h *SettingHandlers) Set(c echo.Context) error {
	ctx := c.Request().Context()

	var req services.SetSettingRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Key == "" {
		return common.SendValidationError(c, "key", "key is required")
	}

	// Default the company scope to the active tenant unless writing a
	// platform-global row was asked for explicitly.
	if req.CompanyID == nil && c.QueryParam("global") != "true" {
		if company, ok := tenancy.ActiveCompany(ctx); ok {
			id := company.ID
			req.CompanyID = &id
		}
	}

	setting, err := h.settingService.Set(ctx, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, setting)
}

// Resolve handles GET /settings/:key, applying the scope precedence for the
// calling user.
func (h *SettingHandlers) Resolve(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("key")
	if key == "" {
		return common.SendValidationError(c, "key", "key is required")
	}

	var userID *uuid.UUID
	if user, ok := common.CurrentUser(ctx); ok {
		id := user.ID
		userID = &id
	}

	setting, err := h.settingService.Resolve(ctx, userID, key)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, setting)
}

// List handles GET /settings for the active tenant scope.
func (h *SettingHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	var companyID *uuid.UUID
	if company, ok := tenancy.ActiveCompany(ctx); ok {
		id := company.ID
		companyID = &id
	}

	var userID *uuid.UUID
	if c.QueryParam("mine") == "true" {
		if user, ok := common.CurrentUser(ctx); ok {
			id := user.ID
			userID = &id
		}
	}

	settings, err := h.settingService.ListForScope(ctx, companyID, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"settings": settings})
}

// Delete handles DELETE /settings/:key
func (h *SettingHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("key")
	if key == "" {
		return common.SendValidationError(c, "key", "key is required")
	}

	var companyID *uuid.UUID
	if company, ok := tenancy.ActiveCompany(ctx); ok {
		id := company.ID
		companyID = &id
	}

	var userID *uuid.UUID
	if c.QueryParam("mine") == "true" {
		if user, ok := common.CurrentUser(ctx); ok {
			id := user.ID
			userID = &id
		}
	}

	if err := h.settingService.Delete(ctx, companyID, userID, key); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
