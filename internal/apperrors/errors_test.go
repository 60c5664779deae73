package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestSentinelStatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{ErrInvalidCredentials, fiber.StatusUnauthorized},
		{ErrAccountLocked, fiber.StatusLocked},
		{ErrInvalidToken, fiber.StatusUnauthorized},
		{ErrForbidden, fiber.StatusForbidden},
		{ErrOtpExpired, fiber.StatusGone},
		{ErrOtpExhausted, fiber.StatusTooManyRequests},
		{ErrOtpMismatch, fiber.StatusBadRequest},
		{ErrInsufficientStock, fiber.StatusConflict},
		{ErrContention, fiber.StatusConflict},
		{ErrTimeout, fiber.StatusGatewayTimeout},
		{ErrNotFound, fiber.StatusNotFound},
		{ErrConflict, fiber.StatusConflict},
		{ErrInternal, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.err.Status != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.err.Code, tt.err.Status, tt.status)
		}
	}
}

func TestWrappedSentinelMatches(t *testing.T) {
	wrapped := fmt.Errorf("placing order: %w", ErrInsufficientStock)
	if !errors.Is(wrapped, ErrInsufficientStock) {
		t.Error("wrapped sentinel no longer matches")
	}
	if errors.Is(wrapped, ErrConflict) {
		t.Error("sentinel matched a different code")
	}
}

func TestWithCauseKeepsIdentityHidesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrInternal.WithCause(cause)

	if !errors.Is(err, ErrInternal) {
		t.Error("copy with cause lost its identity")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable for logging")
	}
	// The client-facing message stays generic.
	if err.Message != ErrInternal.Message {
		t.Errorf("message changed to %q", err.Message)
	}
}

func TestFrom(t *testing.T) {
	if got := From(ErrNotFound); got.Code != "NotFound" {
		t.Errorf("From(sentinel) = %s", got.Code)
	}
	if got := From(fmt.Errorf("ctx: %w", ErrForbidden)); got.Code != "Forbidden" {
		t.Errorf("From(wrapped) = %s", got.Code)
	}
	if got := From(errors.New("driver hiccup")); got.Code != "Internal" || got.Status != fiber.StatusInternalServerError {
		t.Errorf("From(unknown) = %s/%d", got.Code, got.Status)
	}
}

func TestValidation(t *testing.T) {
	err := Validation("quantity must be positive")
	if err.Status != fiber.StatusBadRequest {
		t.Errorf("status = %d", err.Status)
	}
	if err.Error() != "quantity must be positive" {
		t.Errorf("message = %q", err.Error())
	}
}
