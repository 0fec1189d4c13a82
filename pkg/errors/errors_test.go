package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pharmadash/pharmadash/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		detail     string
		sentinel   error
		code       string
		message    string
	}{
		{"unauthorized with detail", http.StatusUnauthorized, "Incorrect email or password", errors.ErrUnauthorized, "UNAUTHORIZED", "Incorrect email or password"},
		{"not found", http.StatusNotFound, "Medicine not found", errors.ErrNotFound, "NOT_FOUND", "Medicine not found"},
		{"conflict", http.StatusConflict, "already acknowledged", errors.ErrConflict, "CONFLICT", "already acknowledged"},
		{"unprocessable entity", http.StatusUnprocessableEntity, "field required", errors.ErrBadRequest, "BAD_REQUEST", "field required"},
		{"server error without detail", http.StatusInternalServerError, "", errors.ErrServer, "SERVER_ERROR", "Internal Server Error"},
		{"bad gateway", http.StatusBadGateway, "", errors.ErrServer, "SERVER_ERROR", "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.FromStatus(tt.statusCode, tt.detail)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.statusCode, err.StatusCode)
		})
	}
}

func TestValidation_HasNoStatusCode(t *testing.T) {
	err := errors.Validation("file size exceeds 10MB limit")
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Zero(t, err.StatusCode)
	assert.Equal(t, "file size exceeds 10MB limit", err.Error())
}

func TestConnectivity_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp 127.0.0.1:8000: connection refused")
	err := errors.Connectivity(cause)
	assert.True(t, errors.Is(err, errors.ErrConnectivity))
	assert.Contains(t, err.Err.Error(), "connection refused")
	assert.Equal(t, "cannot reach the inventory server", err.Message)
}

func TestDetail(t *testing.T) {
	srvErr := errors.FromStatus(http.StatusBadRequest, "Email already registered")
	assert.Equal(t, "Email already registered", errors.Detail(srvErr, "request failed"))

	wrapped := fmt.Errorf("register: %w", srvErr)
	assert.Equal(t, "Email already registered", errors.Detail(wrapped, "request failed"))

	assert.Equal(t, "request failed", errors.Detail(fmt.Errorf("boom"), "request failed"))
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.FromStatus(http.StatusNotFound, "gone"))

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}
