package errors

import (
	"encoding/json"
	"net/http"
)

// Code is the machine-readable error identifier carried in every envelope.
type Code string

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeUnauthorized      Code = "UNAUTHORIZED"
	ErrCodeForbidden         Code = "FORBIDDEN"
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeConflict          Code = "CONFLICT"
	ErrCodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	ErrCodeRelayRejected     Code = "RELAY_REJECTED"
	ErrCodeInternal          Code = "INTERNAL_ERROR"
)

var codeStatus = map[Code]int{
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeRateLimitExceeded: http.StatusTooManyRequests,
	ErrCodeRelayRejected:     http.StatusBadGateway,
	ErrCodeInternal:          http.StatusInternalServerError,
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    Code        `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Status is the default HTTP status for code.
func Status(code Code) int {
	if s, ok := codeStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Write sends the envelope with the default status of code.
func Write(w http.ResponseWriter, code Code, message string, details interface{}) {
	WriteError(w, Status(code), code, message, details)
}

func WriteError(w http.ResponseWriter, status int, code Code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}
