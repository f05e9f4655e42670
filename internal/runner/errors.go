package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrModelBoundary marks failures of the completion request itself.
	ErrModelBoundary = errors.New("model request failed")
	// ErrTurnInProgress is returned when a session already has a turn running.
	ErrTurnInProgress = errors.New("a turn is already in progress for this session")
	// ErrNothingToResume is returned by Resume when no interrupted turn exists.
	ErrNothingToResume = errors.New("no interrupted turn to resume")
)

// ModelError reports a failed completion request. The conversation is left
// as it was before the request, so the turn can be resumed.
type ModelError struct {
	Err     error
	timeout bool
}

func (e *ModelError) Error() string {
	if e.timeout {
		return fmt.Sprintf("%s: timed out: %v", ErrModelBoundary, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrModelBoundary, e.Err)
}

func (e *ModelError) Unwrap() []error { return []error{ErrModelBoundary, e.Err} }

// Timeout reports whether the request hit the model deadline.
func (e *ModelError) Timeout() bool { return e.timeout }
