package media

import (
	"errors"
	"fmt"
)

// Code is the error code surfaced to callers.
type Code string

const (
	CodeUnableToLoad           Code = "E_UNABLE_TO_LOAD"
	CodeUnableToLoadPermission Code = "E_UNABLE_TO_LOAD_PERMISSION"
	CodeUnableToFilter         Code = "E_UNABLE_TO_FILTER"
	CodeUnableToSave           Code = "E_UNABLE_TO_SAVE"
	CodeUnableToDelete         Code = "E_UNABLE_TO_DELETE"
)

var (
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrMalformedCursor  = errors.New("malformed cursor")
	ErrStoreUnavailable = errors.New("asset store unavailable")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("asset not found")
)

// Error is a caller-facing failure carrying one of the Code values.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewError builds an Error for collaborators outside this package.
func NewError(code Code, err error, format string, args ...any) *Error {
	return newError(code, err, format, args...)
}

// CodeOf returns the Code carried by err, or CodeUnableToLoad when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnableToLoad
}

// loadError classifies a store failure into the load codes.
func loadError(err error) *Error {
	if errors.Is(err, ErrPermissionDenied) {
		return newError(CodeUnableToLoadPermission, err, "Could not get media: permission to read the asset store is required")
	}
	return newError(CodeUnableToLoad, err, "Could not get media")
}

// ExtractionError reports that a requested field of one record could not be derived.
type ExtractionError struct {
	AssetID string
	Field   string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("asset %s: %s: %v", e.AssetID, e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
