package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors carry their own codes; these
// cover failures that never reach the application layer.
const (
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"

	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
	ErrCodeTokenRevoked = "TOKEN_REVOKED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Codes missing
// from the map fall back to the prefix rules in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeNotFound:    http.StatusNotFound,
	ErrCodeRateLimited: http.StatusTooManyRequests,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	"UNAUTHENTICATED":        http.StatusUnauthorized,
	"INVALID_CREDENTIALS":    http.StatusUnauthorized,
	"REFRESH_LIMIT_EXCEEDED": http.StatusUnauthorized,
	"ACCOUNT_LOCKED":         http.StatusForbidden,
	"ACCOUNT_DEACTIVATED":    http.StatusForbidden,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	"VALIDATION_ERROR": http.StatusBadRequest,
	"INVALID_STATE":    http.StatusUnprocessableEntity,
	"ALREADY_PAID":     http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code. Unknown
// domain codes are classified by prefix: invalid input maps to 422,
// duplicates to 409, misses to 404, everything else to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "VALIDATION"):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
