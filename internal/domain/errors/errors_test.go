package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorMessage(t *testing.T) {
	e := NewAppError(http.StatusBadRequest, "bad thing", nil)
	assert.Equal(t, "bad thing", e.Error())

	wrapped := NewAppError(http.StatusInternalServerError, "internal", ErrGatewayFailure)
	assert.Equal(t, ErrGatewayFailure.Error(), wrapped.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
		is   error
	}{
		{"not found", NotFound("missing"), http.StatusNotFound, ErrNotFound},
		{"bad request", BadRequest("nope"), http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("who"), http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("dup"), http.StatusConflict, ErrAlreadyExists},
		{"gateway", GatewayError("upstream said no", nil), http.StatusInternalServerError, ErrGatewayFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.ErrorIs(t, tt.err, tt.is)
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrNotFound)))
	assert.False(t, IsNotFound(ErrForbidden))
	assert.False(t, IsNotFound(nil))
}

func TestGatewayError_PreservesUpstreamMessage(t *testing.T) {
	e := GatewayError("502 from gateway: route not available", nil)
	assert.Equal(t, "502 from gateway: route not available", e.Message)

	wrapped := GatewayError("provider rejected payer", fmt.Errorf("status 422"))
	assert.ErrorIs(t, wrapped, ErrGatewayFailure)
	assert.Contains(t, wrapped.Err.Error(), "status 422")
}
