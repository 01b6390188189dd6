package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// Core error taxonomy. Callers distinguish these with errors.Is; the HTTP
// layer maps each to its own response code so that a denial, a missing
// tenant and a missing row never look alike.
var (
	// ErrTenantUnavailable: the user has no active company to act as.
	ErrTenantUnavailable = errors.New("no active tenant available")

	// ErrContextNotEstablished: a code path that must run under a tenant was
	// reached before context resolution. Ordering bug, not retryable.
	ErrContextNotEstablished = errors.New("tenant context not established")

	// ErrCompanyRequired: a tenant-scoped row was about to be written with no
	// company association at all.
	ErrCompanyRequired = errors.New("company reference required")

	// ErrPermissionDenied: a hasPermission check failed at a mutation boundary.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConflict: a store-level unique constraint rejected the write.
	ErrConflict = errors.New("unique constraint conflict")

	ErrNotFound = errors.New("not found")
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The unique constraints are the actual correctness backstop for
// slug, token, membership and setting-scope races.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ConflictFrom maps unique violations onto ErrConflict and passes everything
// else through untouched.
func ConflictFrom(err error) error {
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse builds a standardized error response.
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendError translates a core error into its HTTP shape. Tenant-unavailable
// and permission-denied conditions stay distinguishable from not-found and
// from generic failures.
func SendError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrTenantUnavailable):
		return c.JSON(http.StatusConflict, CreateErrorResponse("TENANT_UNAVAILABLE", "No active company to act as", nil))
	case errors.Is(err, ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("PERMISSION_DENIED", "You lack access to perform this action", nil))
	case errors.Is(err, ErrConflict):
		return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", "The request conflicts with existing data", nil))
	case errors.Is(err, ErrCompanyRequired):
		return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("COMPANY_REQUIRED", "A company reference is required", nil))
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", "Resource not found", nil))
	case errors.Is(err, ErrContextNotEstablished):
		return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", "Request ordering error", nil))
	default:
		return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", "Operation could not be completed", nil))
	}
}

// SendValidationError sends a validation error response.
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{field: message}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendUnauthorizedError sends an unauthorized error response.
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}
