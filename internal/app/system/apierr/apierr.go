// Package apierr maps domain errors onto the stable JSON error surface.
//
// Every API failure renders as
//
//	{"error":{"code":"not_found","message":"…"}}
//
// with one of a fixed set of codes. Handlers pick the code; messages are
// human-readable but must never carry credentials (access tokens in
// particular are never echoed back, even for unknown-token failures).
package apierr

import (
	"encoding/json"
	"net/http"
)

// Stable error codes.
const (
	CodeNotFound         = "not_found"
	CodeExpired          = "expired"
	CodeAlreadyCompleted = "already_completed"
	CodeNotCompleted     = "not_completed"
	CodeConflict         = "conflict"
	CodeForbidden        = "forbidden"
	CodeUnauthorized     = "unauthorized"
	CodeValidation       = "validation_error"
	CodeInternal         = "internal"
)

var statusByCode = map[string]int{
	CodeNotFound:         http.StatusNotFound,
	CodeExpired:          http.StatusGone,
	CodeAlreadyCompleted: http.StatusBadRequest,
	CodeNotCompleted:     http.StatusBadRequest,
	CodeConflict:         http.StatusConflict,
	CodeForbidden:        http.StatusForbidden,
	CodeUnauthorized:     http.StatusUnauthorized,
	CodeValidation:       http.StatusUnprocessableEntity,
	CodeInternal:         http.StatusInternalServerError,
}

type body struct {
	Error payload `json:"error"`
}

type payload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Status returns the HTTP status for a code (500 for unknown codes).
func Status(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Write renders the error body for code with its mapped status.
func Write(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(code))
	_ = json.NewEncoder(w).Encode(body{Error: payload{Code: code, Message: message}})
}

// NotFound writes a 404 with the not_found code.
func NotFound(w http.ResponseWriter, message string) { Write(w, CodeNotFound, message) }

// Expired writes a 410 with the expired code.
func Expired(w http.ResponseWriter, message string) { Write(w, CodeExpired, message) }

// AlreadyCompleted writes a 400 with the already_completed code.
func AlreadyCompleted(w http.ResponseWriter, message string) {
	Write(w, CodeAlreadyCompleted, message)
}

// NotCompleted writes a 400 with the not_completed code.
func NotCompleted(w http.ResponseWriter, message string) { Write(w, CodeNotCompleted, message) }

// Conflict writes a 409 with the conflict code.
func Conflict(w http.ResponseWriter, message string) { Write(w, CodeConflict, message) }

// Forbidden writes a 403 with the forbidden code.
func Forbidden(w http.ResponseWriter, message string) { Write(w, CodeForbidden, message) }

// Unauthorized writes a 401 with the unauthorized code.
func Unauthorized(w http.ResponseWriter, message string) { Write(w, CodeUnauthorized, message) }

// Validation writes a 422 with the validation_error code.
func Validation(w http.ResponseWriter, message string) { Write(w, CodeValidation, message) }

// Internal writes a 500 with a generic message. Details belong in logs,
// not in the response.
func Internal(w http.ResponseWriter) { Write(w, CodeInternal, "internal error") }

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
