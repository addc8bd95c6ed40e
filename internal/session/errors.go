package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImage is returned by edits requested before any image was loaded.
	ErrNoImage = errors.New("no image loaded")
	// ErrBusy is returned when an edit is requested while another runs.
	ErrBusy = errors.New("another operation is in progress")
	// ErrStaleResult is returned when a load, reset, undo or redo happened
	// while an edit was running. The edit's result is discarded.
	ErrStaleResult = errors.New("image changed while the operation was running")
)

// OperationError wraps a collaborator failure. History is unchanged when
// one is returned.
type OperationError struct {
	Operation string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
