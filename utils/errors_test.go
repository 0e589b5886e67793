package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindStatus(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewConflictError("SERVICE_IN_USE", "in use"), http.StatusBadRequest},
		{NewAuthenticationError("no token"), http.StatusUnauthorized},
		{NewAuthorizationError("no"), http.StatusForbidden},
		{NewNotFoundError("Order"), http.StatusNotFound},
		{NewUnavailableError("STORAGE_NOT_CONFIGURED", "off"), http.StatusServiceUnavailable},
		{NewInternalError("boom", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Kind.Status())
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFoundError("Client")
	assert.Equal(t, "Client not found", err.Error())
	assert.Equal(t, "NOT_FOUND", err.Code)
}

func TestAsAppError(t *testing.T) {
	conflict := NewConflictError("REQUEST_ALREADY_CONVERTED", "already converted")
	wrapped := fmt.Errorf("convert: %w", conflict)

	assert.Same(t, conflict, AsAppError(wrapped))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))

	cause := errors.New("connection reset")
	internal := AsAppError(cause)
	assert.Equal(t, KindInternal, internal.Kind)
	assert.ErrorIs(t, internal, cause)
}
