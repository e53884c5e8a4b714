package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string            `json:"error"`             // machine-readable code
	Message string            `json:"message"`           // shown to the user
	Details map[string]string `json:"details,omitempty"` // per-field validation messages
}

// Error codes carried in ErrorResponse.Error.
const (
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation_error"
	CodeDuplicate    = "duplicate"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeRateLimited  = "rate_limit_exceeded"
	CodeInternal     = "internal_error"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: errorCode, Message: message})
}

// WriteValidationError reports field-level failures, keyed by JSON field name.
func WriteValidationError(w http.ResponseWriter, message string, details map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidation,
		Message: message,
		Details: details,
	})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeBadRequest, message)
}

// WriteDuplicate reports a uniqueness violation. Duplicates are client
// errors on this API and use 400.
func WriteDuplicate(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeDuplicate, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, CodeRateLimited, message)
}

func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, "Something went wrong, please try again later")
}
