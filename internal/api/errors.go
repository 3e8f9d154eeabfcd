package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/chroma-core/internal/light"
	"github.com/nerrad567/chroma-core/internal/palette"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeForbidden      = "forbidden"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// isLightValidationError checks whether an error is a light validation error.
// ValidateLight wraps various sentinel errors so we check all of them rather
// than just ErrInvalidLight.
func isLightValidationError(err error) bool {
	return errors.Is(err, light.ErrInvalidLight) ||
		errors.Is(err, light.ErrInvalidName) ||
		errors.Is(err, light.ErrInvalidSlug) ||
		errors.Is(err, light.ErrInvalidColourMode)
}

// isPaletteValidationError checks whether an error is a palette validation error.
func isPaletteValidationError(err error) bool {
	return errors.Is(err, palette.ErrInvalidPalette) ||
		errors.Is(err, palette.ErrInvalidName) ||
		errors.Is(err, palette.ErrInvalidSlug) ||
		errors.Is(err, palette.ErrInvalidColours)
}
