package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the sync service and its transports.
var (
	// ErrUnauthenticated means no identity was attached to the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotConnected means the collaborator for a requested path is not configured.
	ErrNotConnected = errors.New("source not connected")

	// ErrUpstreamFetch means a collaborator fetch failed. Callers may retry.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrInvalidInput means a caller supplied a malformed scope or settings value.
	ErrInvalidInput = errors.New("invalid input")
)

// UpstreamError wraps a collaborator failure with the source that produced it.
type UpstreamError struct {
	Source string
	Err    error
}

// NewUpstreamError returns an UpstreamError for source.
func NewUpstreamError(source string, err error) *UpstreamError {
	return &UpstreamError{Source: source, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Source, e.Err)
}

// Unwrap exposes the cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrUpstreamFetch so callers can match the category.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamFetch
}

// NotConnectedError returns ErrNotConnected annotated with the missing source.
func NotConnectedError(source string) error {
	return fmt.Errorf("%s: %w", source, ErrNotConnected)
}

// InvalidInputError returns ErrInvalidInput annotated with the validation failure.
func InvalidInputError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
