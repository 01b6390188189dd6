package handlers

import (
	"errors"
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

type InviteHandlers struct {
	inviteService services.InviteService
}

func NewInviteHandlers(inviteService services.InviteService) *InviteHandlers {
	return &InviteHandlers{inviteService: inviteService}
}

// Create handles POST /invites
func (h *InviteHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := common.CurrentUser(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CreateInviteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Email == "" {
		return common.SendValidationError(c, "email", "email is required")
	}
	req.CreatedBy = user.ID

	invite, err := h.inviteService.Create(ctx, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, invite)
}

// Get handles GET /invites/:id
func (h *InviteHandlers) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	invite, err := h.inviteService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invite)
}

// ListPending handles GET /invites/pending
func (h *InviteHandlers) ListPending(c echo.Context) error {
	invites, err := h.inviteService.ListPending(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"invites": invites})
}

// Accept handles POST /invites/accept. Unauthenticated: the token is the
// credential.
func (h *InviteHandlers) Accept(c echo.Context) error {
	var req services.AcceptInviteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Token == "" {
		return common.SendValidationError(c, "token", "token is required")
	}

	user, err := h.inviteService.Accept(c.Request().Context(), &req)
	switch {
	case errors.Is(err, services.ErrInviteConsumed):
		return c.JSON(http.StatusConflict, common.CreateErrorResponse("INVITE_CONSUMED", "This invite has already been accepted", nil))
	case errors.Is(err, services.ErrInviteExpired):
		return c.JSON(http.StatusGone, common.CreateErrorResponse("INVITE_EXPIRED", "This invite has expired", nil))
	case err != nil:
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
