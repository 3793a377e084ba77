package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Request error codes
const (
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput     = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeInvalidOperation = "ERR_INVALID_OPERATION_TYPE"
	ErrCodeInvalidIndex     = "ERR_ITEM_INDEX_OUT_OF_RANGE"
)

// Resource error codes
const (
	ErrCodeNotFound             = "ERR_NOT_FOUND"
	ErrCodeSimulationNotFound   = "ERR_SIMULATION_NOT_FOUND"
	ErrCodeDraftNotFound        = "ERR_DRAFT_NOT_FOUND"
	ErrCodeProductNotFound      = "ERR_PRODUCT_NOT_FOUND"
	ErrCodePartyNotFound        = "ERR_PARTY_NOT_FOUND"
	ErrCodeJurisdictionNotFound = "ERR_JURISDICTION_NOT_FOUND"
	ErrCodeConcurrencyConflict  = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeDraftLimitReached   = "ERR_DRAFT_LIMIT_REACHED"
	ErrCodeInvalidJurisdiction = "ERR_INVALID_JURISDICTION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Request errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeInvalidOperation: http.StatusBadRequest,
	ErrCodeInvalidIndex:     http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,

	// Resource errors
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeSimulationNotFound:   http.StatusNotFound,
	ErrCodeDraftNotFound:        http.StatusNotFound,
	ErrCodeProductNotFound:      http.StatusNotFound,
	ErrCodePartyNotFound:        http.StatusNotFound,
	ErrCodeJurisdictionNotFound: http.StatusNotFound,
	ErrCodeConcurrencyConflict:  http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeInvalidJurisdiction: http.StatusUnprocessableEntity,
	ErrCodeDraftLimitReached:   http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes ending in _NOT_FOUND map to 404, everything else to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasSuffix(code, "_NOT_FOUND") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code (SIMULATION_NOT_FOUND) to
// the API format (ERR_SIMULATION_NOT_FOUND). Codes already prefixed are
// returned as-is.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
