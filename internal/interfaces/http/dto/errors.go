package dto

import (
	"net/http"

	"github.com/pentol/backend/internal/domain/shared"
)

// API error codes. Clients branch on these, so they never change meaning.
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodePayloadTooLarge  = "ERR_PAYLOAD_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"

	// ErrCodeTransient marks failures the client may retry unchanged
	ErrCodeTransient     = "ERR_TRANSIENT"
	ErrCodeNotConfigured = "ERR_NOT_CONFIGURED"
	ErrCodeRateLimited   = "ERR_RATE_LIMITED"
)

// internalErrorCode is what approval outcomes report for unexpected failures
const internalErrorCode = "INTERNAL_ERROR"

var codeStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	ErrCodeTransient:     http.StatusServiceUnavailable,
	ErrCodeNotConfigured: http.StatusServiceUnavailable,
	ErrCodeRateLimited:   http.StatusTooManyRequests,
}

var domainCodes = map[string]string{
	shared.CodeValidation:    ErrCodeValidation,
	shared.CodeForbidden:     ErrCodeForbidden,
	shared.CodeNotFound:      ErrCodeNotFound,
	shared.CodeConflict:      ErrCodeConcurrencyConflict,
	shared.CodeState:         ErrCodeInvalidState,
	shared.CodeTransient:     ErrCodeTransient,
	shared.CodeNotConfigured: ErrCodeNotConfigured,
	"UNAUTHORIZED":           ErrCodeUnauthorized,
	internalErrorCode:        ErrCodeInternal,
}

// GetHTTPStatus returns the status for an API code; unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode turns a domain error code into its API code. API codes
// and unknown codes pass through.
func NormalizeErrorCode(code string) string {
	if api, ok := domainCodes[code]; ok {
		return api
	}
	return code
}
