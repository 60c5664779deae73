// Package apperrors defines the error taxonomy shared by every service and the
// HTTP layer. Services return these sentinels (optionally wrapped); the response
// helper maps them to status codes without leaking internals.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

// Is matches any wrapped copy of the same sentinel by code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause returns a copy carrying the underlying error for logging.
// The cause is never serialized to clients.
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Status: e.Status, cause: cause}
}

var (
	ErrInvalidCredentials = &AppError{Code: "InvalidCredentials", Message: "invalid credentials", Status: fiber.StatusUnauthorized}
	ErrAccountLocked      = &AppError{Code: "AccountLocked", Message: "account is temporarily locked", Status: fiber.StatusLocked}
	ErrInvalidToken       = &AppError{Code: "InvalidToken", Message: "invalid or expired token", Status: fiber.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "Forbidden", Message: "access denied", Status: fiber.StatusForbidden}
	ErrUnknownRole        = &AppError{Code: "UnknownRole", Message: "role not found in theater", Status: fiber.StatusNotFound}
	ErrUnknownPage        = &AppError{Code: "UnknownPage", Message: "page not registered in theater", Status: fiber.StatusNotFound}
	ErrOtpExpired         = &AppError{Code: "OtpExpired", Message: "verification code has expired", Status: fiber.StatusGone}
	ErrOtpExhausted       = &AppError{Code: "OtpExhausted", Message: "too many verification attempts", Status: fiber.StatusTooManyRequests}
	ErrOtpMismatch        = &AppError{Code: "OtpMismatch", Message: "incorrect verification code", Status: fiber.StatusBadRequest}
	ErrInsufficientStock  = &AppError{Code: "InsufficientStock", Message: "insufficient stock", Status: fiber.StatusConflict}
	ErrContention         = &AppError{Code: "Contention", Message: "concurrent update conflict, retry", Status: fiber.StatusConflict}
	ErrTimeout            = &AppError{Code: "Timeout", Message: "operation timed out", Status: fiber.StatusGatewayTimeout}
	ErrNotFound           = &AppError{Code: "NotFound", Message: "not found", Status: fiber.StatusNotFound}
	ErrConflict           = &AppError{Code: "Conflict", Message: "duplicate value", Status: fiber.StatusConflict}
	ErrInternal           = &AppError{Code: "Internal", Message: "internal server error", Status: fiber.StatusInternalServerError}
)

// Validation builds a field-level rejection.
func Validation(msg string) *AppError {
	return &AppError{Code: "ValidationError", Message: msg, Status: fiber.StatusBadRequest}
}

// Internal wraps an unexpected error; the cause stays server-side.
func Internal(cause error) *AppError {
	return ErrInternal.WithCause(cause)
}

// From extracts the AppError from err, defaulting to Internal.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
