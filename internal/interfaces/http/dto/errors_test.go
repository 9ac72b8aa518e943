package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus_MappedCodes(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{"BAD_REQUEST", http.StatusBadRequest},
		{"NOT_FOUND", http.StatusNotFound},
		{"UNAUTHENTICATED", http.StatusUnauthorized},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"REFRESH_LIMIT_EXCEEDED", http.StatusUnauthorized},
		{"ACCOUNT_LOCKED", http.StatusForbidden},
		{"ACCOUNT_DEACTIVATED", http.StatusForbidden},
		{"FORBIDDEN", http.StatusForbidden},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"VALIDATION_ERROR", http.StatusBadRequest},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestGetHTTPStatus_PrefixFallback(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("INVALID_AMOUNT"))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("INVALID_TRANSITION"))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus("ALREADY_APPROVED"))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus("PROJECT_NOT_FOUND"))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Invoice not found", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Invoice not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}
