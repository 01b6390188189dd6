package handlers

import (
	"net/http"
	"time"

	"backoffice/internal/common"
	"backoffice/internal/models"
	"backoffice/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuditLogsHandlers struct {
	auditLogsService services.AuditLogsService
}

func NewAuditLogsHandlers(auditLogsService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditLogsService: auditLogsService}
}

// List handles GET /audit-logs
func (h *AuditLogsHandlers) List(c echo.Context) error {
	filters := &models.AuditLogFilters{}
	filters.Limit, filters.Offset = paginationParams(c)

	if v := c.QueryParam("auditable_type"); v != "" {
		t := models.AuditableType(v)
		filters.AuditableType = &t
	}
	if v := c.QueryParam("auditable_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return common.SendValidationError(c, "auditable_id", "invalid id")
		}
		filters.AuditableID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		filters.Action = &v
	}
	if v := c.QueryParam("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return common.SendValidationError(c, "user_id", "invalid id")
		}
		filters.UserID = &id
	}
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return common.SendValidationError(c, "start_date", "invalid RFC3339 timestamp")
		}
		filters.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return common.SendValidationError(c, "end_date", "invalid RFC3339 timestamp")
		}
		filters.EndDate = &t
	}

	logs, err := h.auditLogsService.List(c.Request().Context(), filters)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"audit_logs": logs})
}

// Get handles GET /audit-logs/:id
func (h *AuditLogsHandlers) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.auditLogsService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}
