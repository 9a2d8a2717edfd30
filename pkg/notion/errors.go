package notion

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream operations.
var (
	// ErrUnresolvable indicates an identifier could not be classified as
	// a page, database, or block.
	ErrUnresolvable = errors.New("identifier could not be resolved")

	// ErrMissingAPIKey indicates the client was constructed without
	// credentials.
	ErrMissingAPIKey = errors.New("notion api key is required")
)

// APIError is a non-2xx response from the upstream API.
type APIError struct {
	// Op is the operation that failed (e.g., "RetrievePage").
	Op string

	// Status is the HTTP status code.
	Status int

	// Code is the upstream error code, if one was returned.
	Code string

	// Message is the upstream error message, if one was returned.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion %s: %d %s: %s", e.Op, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion %s: status %d", e.Op, e.Status)
}

// IsUnresolvable returns true if the error indicates classification failed.
func IsUnresolvable(err error) bool {
	return errors.Is(err, ErrUnresolvable)
}
