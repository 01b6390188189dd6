package middleware

import (
	"strings"

	"backoffice/internal/common"
	"backoffice/internal/repositories"
	"backoffice/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware validates bearer tokens and attaches the authenticated user
// to the request context. Verification uses the shared HMAC secret, or a JWKS
// endpoint when one is configured.
type AuthMiddleware struct {
	auth  services.AuthService
	users repositories.UserRepository
	jwks  *keyfunc.JWKS
}

func NewAuthMiddleware(auth services.AuthService, users repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, users: users}
}

// NewAuthMiddlewareWithJWKS verifies tokens against a remote JWKS instead of
// the local secret (external identity provider deployments).
func NewAuthMiddlewareWithJWKS(auth services.AuthService, users repositories.UserRepository, jwksURL string) (*AuthMiddleware, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{auth: auth, users: users, jwks: jwks}, nil
}

// Authenticate requires a valid bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return common.SendUnauthorizedError(c)
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return common.SendUnauthorizedError(c)
		}

		userID, err := m.subject(c, tokenString)
		if err != nil {
			return common.SendUnauthorizedError(c)
		}

		user, err := m.users.GetByID(c.Request().Context(), userID)
		if err != nil {
			return common.SendUnauthorizedError(c)
		}

		ctx := common.WithUser(c.Request().Context(), user)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (m *AuthMiddleware) subject(c echo.Context, tokenString string) (uuid.UUID, error) {
	if m.jwks != nil {
		token, err := jwt.Parse(tokenString, m.jwks.Keyfunc)
		if err != nil || !token.Valid {
			return uuid.Nil, services.ErrInvalidCredentials
		}
		sub, err := token.Claims.GetSubject()
		if err != nil {
			return uuid.Nil, services.ErrInvalidCredentials
		}
		return uuid.Parse(sub)
	}

	claims, err := m.auth.ValidateToken(c.Request().Context(), tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.UserID)
}
