package handlers

import (
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type RoleHandlers struct {
	roleService services.RoleService
}

func NewRoleHandlers(roleService services.RoleService) *RoleHandlers {
	return &RoleHandlers{roleService: roleService}
}

// Create handles POST /roles
func (h *RoleHandlers) Create(c echo.Context) error {
	var req services.CreateRoleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}

	role, err := h.roleService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, role)
}

// Get handles GET /roles/:id
func (h *RoleHandlers) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	role, err := h.roleService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	slugs, err := h.roleService.PermissionSlugs(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"role":        role,
		"permissions": slugs,
	})
}

// Update handles PUT /roles/:id
func (h *RoleHandlers) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}
	req.ID = id

	role, err := h.roleService.Update(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

// Delete handles DELETE /roles/:id
func (h *RoleHandlers) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.roleService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /roles
func (h *RoleHandlers) List(c echo.Context) error {
	limit, offset := paginationParams(c)
	roles, err := h.roleService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"roles": roles})
}

// AttachPermission handles POST /roles/:id/permissions
func (h *RoleHandlers) AttachPermission(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Slug string `json:"slug"`
	}
	if err := c.Bind(&req); err != nil || req.Slug == "" {
		return common.SendValidationError(c, "slug", "permission slug is required")
	}

	if err := h.roleService.AttachPermission(c.Request().Context(), id, req.Slug); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DetachPermission handles DELETE /roles/:id/permissions/:slug
func (h *RoleHandlers) DetachPermission(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	slug := c.Param("slug")
	if slug == "" {
		return common.SendValidationError(c, "slug", "permission slug is required")
	}

	if err := h.roleService.DetachPermission(c.Request().Context(), id, slug); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AssignToMembership handles PUT /memberships/:id/role
func (h *RoleHandlers) AssignToMembership(c echo.Context) error {
	membershipID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		RoleID *uuid.UUID `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	if err := h.roleService.AssignToMembership(c.Request().Context(), membershipID, req.RoleID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
