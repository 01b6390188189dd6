package handlers

import (
	"net/http"
	"strconv"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CompanyHandlers struct {
	companyService services.CompanyService
}

func NewCompanyHandlers(companyService services.CompanyService) *CompanyHandlers {
	return &CompanyHandlers{companyService: companyService}
}

func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func paginationParams(c echo.Context) (limit, offset int) {
	limit, offset = 20, 0
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// Create handles POST /companies
func (h *CompanyHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.CurrentUser(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}
	if req.OwnerID == uuid.Nil {
		req.OwnerID = user.ID
	}

	company, err := h.companyService.Create(ctx, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, company)
}

// Get handles GET /companies/:id
func (h *CompanyHandlers) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	company, err := h.companyService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

// Update handles PUT /companies/:id
func (h *CompanyHandlers) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req services.UpdateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "name is required")
	}
	req.ID = id

	company, err := h.companyService.Update(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

// Deactivate handles DELETE /companies/:id
func (h *CompanyHandlers) Deactivate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.companyService.Deactivate(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /companies
func (h *CompanyHandlers) List(c echo.Context) error {
	limit, offset := paginationParams(c)
	companies, err := h.companyService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"companies": companies})
}

// Switch handles POST /companies/:id/switch: changes the caller's active
// tenant for subsequent requests.
func (h *CompanyHandlers) Switch(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.CurrentUser(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	company, err := h.companyService.SwitchCompany(ctx, user, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}
