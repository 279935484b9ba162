package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"propertyms/internal/models"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID int64       `json:"id"`
	Role   models.Role `json:"role"`
}

func (i Identity) IsAdmin() bool  { return i.Role == models.RoleAdmin }
func (i Identity) IsOwner() bool  { return i.Role == models.RoleOwner }
func (i Identity) IsTenant() bool { return i.Role == models.RoleTenant }

// SystemIdentity is used by scheduled and command-line runs.
var SystemIdentity = Identity{UserID: 0, Role: models.RoleAdmin}

// WithIdentity stores the caller in ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetIdentityFromContext extracts the caller from the request context
func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// HTTPStatus maps an error kind to a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindGatewayNotConfigured:
		return http.StatusServiceUnavailable
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// SendAppError writes err using its kind. Unclassified errors are reported
// without their internals.
func SendAppError(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return SendServerError(c, "Internal server error")
	}
	msg := appErr.Message
	if msg == "" {
		msg = appErr.Error()
	}
	return c.JSON(HTTPStatus(err), CreateErrorResponse(string(appErr.Kind), msg, nil))
}

// ParseIDParam parses a positive integer path parameter
func ParseIDParam(c echo.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, InvalidInput(name + " is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, InvalidInput(name + " must be a positive integer")
	}
	return id, nil
}

// QueryInt reads an optional integer query parameter.
func QueryInt(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, InvalidInput(name + " must be an integer")
	}
	return v, nil
}

// Pagination reads limit/offset with sane bounds
func Pagination(c echo.Context) (limit, offset int) {
	limit, err := QueryInt(c, "limit", 20)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err = QueryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ValidatePeriod checks a billing month and year.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return InvalidInput("month must be between 1 and 12")
	}
	if year < 2020 || year > 2100 {
		return InvalidInput("year must be between 2020 and 2100")
	}
	return nil
}

// ValidateOptionalString validates optional string fields
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		*value = strings.TrimSpace(*value)
		if len(*value) > maxLength {
			return InvalidInput(fmt.Sprintf("%s cannot exceed %d characters", fieldName, maxLength))
		}
	}
	return nil
}

// ValidateLength trims a required string field and checks its length.
func ValidateLength(value *string, fieldName string, min, max int) error {
	*value = strings.TrimSpace(*value)
	n := utf8.RuneCountInString(*value)
	if n < min || n > max {
		return InvalidInput(fmt.Sprintf("%s must be between %d and %d characters", fieldName, min, max))
	}
	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
