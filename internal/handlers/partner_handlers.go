package handlers

import (
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

type PartnerHandlers struct {
	partnerService services.PartnerService
}

func NewPartnerHandlers(partnerService services.PartnerService) *PartnerHandlers {
	return &PartnerHandlers{partnerService: partnerService}
}

// Create handles POST /partners
func (h *PartnerHandlers) Create(c echo.Context) error {
	var req services.CreatePartnerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}
	if req.Kind != "customer" && req.Kind != "supplier" {
		return common.SendValidationError(c, "kind", "kind must be customer or supplier")
	}

	partner, err := h.partnerService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, partner)
}

// Get handles GET /partners/:id
func (h *PartnerHandlers) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	partner, err := h.partnerService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, partner)
}

// Update handles PUT /partners/:id
func (h *PartnerHandlers) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdatePartnerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}
	req.ID = id

	partner, err := h.partnerService.Update(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, partner)
}

// Delete handles DELETE /partners/:id
func (h *PartnerHandlers) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.partnerService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Restore handles POST /partners/:id/restore
func (h *PartnerHandlers) Restore(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	partner, err := h.partnerService.Restore(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, partner)
}

// List handles GET /partners
func (h *PartnerHandlers) List(c echo.Context) error {
	limit, offset := paginationParams(c)
	partners, err := h.partnerService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"partners": partners})
}
