package common

import (
	"errors"
	"strings"
)

// ErrorKind is a stable, transport-independent error category.
type ErrorKind string

const (
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindConflict             ErrorKind = "CONFLICT"
	KindInvalidInput         ErrorKind = "INVALID_INPUT"
	KindForbidden            ErrorKind = "FORBIDDEN"
	KindGatewayNotConfigured ErrorKind = "GATEWAY_NOT_CONFIGURED"
	KindGateway              ErrorKind = "GATEWAY_ERROR"
)

// AppError is a domain error with a kind the HTTP layer can map to a status.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " "))
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels (no message) by kind and named errors by kind and message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Message == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Kind sentinels
var (
	ErrNotFound             = &AppError{Kind: KindNotFound}
	ErrConflict             = &AppError{Kind: KindConflict}
	ErrInvalidInput         = &AppError{Kind: KindInvalidInput}
	ErrForbidden            = &AppError{Kind: KindForbidden}
	ErrGatewayNotConfigured = &AppError{Kind: KindGatewayNotConfigured, Message: "Payment gateway is not configured"}
	ErrGateway              = &AppError{Kind: KindGateway}
)

var (
	ErrUnitNotAvailable     = Conflict("Unit is not available for rent")
	ErrTenancyAlreadyActive = Conflict("Unit already has an active tenancy")
	ErrTenancyAlreadyEnded  = Conflict("Tenancy has already ended")
	ErrInvalidDateRange     = InvalidInput("End date must be after start date")
	ErrPaymentAlreadyPaid   = Conflict("Payment is already paid")
)

func NotFound(message string) error {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func InvalidInput(message string) *AppError {
	return &AppError{Kind: KindInvalidInput, Message: message}
}

func Forbidden(message string) error {
	return &AppError{Kind: KindForbidden, Message: message}
}

// GatewayError wraps a failure reported by, or on the way to, the payment gateway.
func GatewayError(message string, err error) error {
	return &AppError{Kind: KindGateway, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
