package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when the credential is missing or rejected
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the principal lacks the required role
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeRevocationUnavailable is used when logout cannot revoke tokens
	ErrCodeRevocationUnavailable = "ERR_REVOCATION_UNAVAILABLE"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
)

// Ledger error codes
const (
	// ErrCodeDependencyLookupFailed is used when a referenced record is missing
	ErrCodeDependencyLookupFailed = "ERR_DEPENDENCY_LOOKUP_FAILED"
	// ErrCodeTransactionFailed is used when a ledger write rolled back; the client may retry
	ErrCodeTransactionFailed = "ERR_TRANSACTION_FAILED"
	// ErrCodeServiceUnavailable is used when a dependency such as the database is down
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:          http.StatusUnauthorized,
	ErrCodeForbidden:             http.StatusForbidden,
	ErrCodeRevocationUnavailable: http.StatusNotImplemented,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeDependencyLookupFailed: http.StatusUnprocessableEntity,
	ErrCodeTransactionFailed:      http.StatusServiceUnavailable,
	ErrCodeServiceUnavailable:     http.StatusServiceUnavailable,
}

// RetryAfterSeconds lists codes whose responses carry a Retry-After header
var RetryAfterSeconds = map[string]int{
	ErrCodeTransactionFailed: 1,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"VALIDATION_ERROR":         ErrCodeValidation,
	"UNAUTHENTICATED":          ErrCodeUnauthorized,
	"UNAUTHORIZED":             ErrCodeUnauthorized,
	"FORBIDDEN":                ErrCodeForbidden,
	"DEPENDENCY_LOOKUP_FAILED": ErrCodeDependencyLookupFailed,
	"TRANSACTION_FAILED":       ErrCodeTransactionFailed,
	"REVOCATION_UNAVAILABLE":   ErrCodeRevocationUnavailable,
	"INTERNAL_ERROR":           ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
