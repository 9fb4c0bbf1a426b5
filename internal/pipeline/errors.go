package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure for callers.
type Kind string

// Failure kinds. Every error leaving the pipeline carries exactly one.
const (
	KindInvalidRequest      Kind = "invalid_request"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindTimeout             Kind = "timeout"
	KindSynthesisFailure    Kind = "synthesis_failure"
	KindNoViableSources     Kind = "no_viable_sources"
)

// Error is the typed failure returned by Run. Stage names the pipeline
// phase that failed.
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s at %s: %s: %v", e.Kind, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Stage, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a pipeline error.
func NewError(kind Kind, stage, message string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message, Err: err}
}

// KindOf extracts the failure kind from any error, defaulting to
// upstream unavailability for untyped errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUpstreamUnavailable
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
