package handlers

import (
	"errors"
	"net/http"

	"backoffice/internal/common"
	"backoffice/internal/services"

	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandlers) Register(c echo.Context) error {
	var req services.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "email and password are required")
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "password must be at least 8 characters")
	}

	user, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request format")
	}

	user, tokens, err := h.authService.Login(c.Request().Context(), &req)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return common.SendUnauthorizedError(c)
	}
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":   user,
		"tokens": tokens,
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh token is required")
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return common.SendUnauthorizedError(c)
	}
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	user, ok := common.CurrentUser(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, user)
}

// Logout handles POST /auth/logout: revokes every refresh token of the caller.
func (h *AuthHandlers) Logout(c echo.Context) error {
	user, ok := common.CurrentUser(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	if err := h.authService.RevokeUserTokens(c.Request().Context(), user.ID); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
