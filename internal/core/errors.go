package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the error taxonomy. Typed errors below match them via errors.Is.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrTransport       = errors.New("transport failure")
	ErrParse           = errors.New("parse failure")
	ErrSessionNotFound = errors.New("session not found")
)

// TransportError is a failed fetch: a non-success status or a transport fault.
type TransportError struct {
	Locator    string
	StatusCode int   // 0 when the request never produced a response
	Cause      error // nil for plain status failures
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP status %d (%s)", e.Locator, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Temporary reports whether retrying the fetch could succeed.
func (e *TransportError) Temporary() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Cause, errDatasetTooLarge)
	}
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ParseError means the input could not be read as tabular text at all.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return "parse: " + e.Msg }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// LoadFailure is the category-level error recorded when a load fails.
type LoadFailure struct {
	Category   string
	StatusCode int
	Cause      error
}

func (e *LoadFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("error loading data for %s: HTTP status %d", e.Category, e.StatusCode)
	}
	if errors.Is(e.Cause, ErrParse) {
		return fmt.Sprintf("error parsing data for %s: %v", e.Category, e.Cause)
	}
	return fmt.Sprintf("error loading data for %s: %v", e.Category, e.Cause)
}

func (e *LoadFailure) Unwrap() error { return e.Cause }

// newLoadFailure wraps err for category, lifting any HTTP status code.
func newLoadFailure(category string, err error) *LoadFailure {
	lf := &LoadFailure{Category: category, Cause: err}
	var te *TransportError
	if errors.As(err, &te) {
		lf.StatusCode = te.StatusCode
	}
	return lf
}
