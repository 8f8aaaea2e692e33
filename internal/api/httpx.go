package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"mediaroll/internal/media"
)

// APIError represents a structured error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the top-level error envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a structured error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: APIError{Code: code, Message: message},
	})
}

var codeStatus = map[media.Code]int{
	media.CodeUnableToFilter:         http.StatusBadRequest,
	media.CodeUnableToLoadPermission: http.StatusForbidden,
	media.CodeUnableToLoad:           http.StatusServiceUnavailable,
	media.CodeUnableToSave:           http.StatusInternalServerError,
	media.CodeUnableToDelete:         http.StatusConflict,
}

// writeMediaError renders err using its media code. Uncoded errors are
// reported as load failures without leaking their text.
func writeMediaError(w http.ResponseWriter, err error) {
	code := media.CodeOf(err)
	message := "Could not get media"
	var e *media.Error
	if errors.As(err, &e) {
		message = e.Message
	}
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	WriteError(w, status, string(code), message)
}

func filterError(format string, args ...any) error {
	return media.NewError(media.CodeUnableToFilter, media.ErrInvalidFilter, format, args...)
}
