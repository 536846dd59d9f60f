package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// Spreadsheet errors
	ErrDecode        = errors.New("spreadsheet could not be decoded")
	ErrNoSheetFound  = errors.New("no sheet found in workbook")
	ErrEmptySheet    = errors.New("sheet has no cell data")
	ErrInvalidOption = errors.New("invalid option")

	// Row errors
	ErrValidation      = errors.New("validation failed")
	ErrRemoteRejection = errors.New("rejected by remote")
	ErrNotAttempted    = errors.New("not attempted")
	ErrMissingID       = errors.New("remote response carried no id")

	// Transport errors
	ErrTransportFailure = errors.New("transport failure")
	ErrEmptyURL         = errors.New("URL cannot be empty")
	ErrLoginFailed      = errors.New("login failed")

	// Grid bookkeeping, never shown to users
	ErrStaleResponse = errors.New("stale response discarded")
	ErrRowNotLoaded  = errors.New("row is not on the current page")

	// Configuration errors
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMissingRequired = errors.New("missing required field")
)

// HTTPError is returned when the remote answered with a failure.
// It unwraps to ErrRemoteRejection.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Code       int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s %s: status %d, code %d: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return ErrRemoteRejection
}

// Wrap wraps an error with additional context
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// New is errors.New, re-exported so callers need a single errors import
func New(text string) error {
	return errors.New(text)
}

// Is checks if the error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As checks if the error can be unwrapped to the target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsTransport reports whether err means the remote was never reached
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransportFailure)
}

// StatusCode extracts the HTTP status from err, or 0 when there is none
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
