package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmitInFlight: a submission is already underway on this instance.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrSubmitDone: the submission was confirmed; start a new one instead.
	ErrSubmitDone = errors.New("submission already confirmed")
	// ErrQuantityLocked: SetQuantity is only legal in IDLE/FAILED.
	ErrQuantityLocked = errors.New("quantity locked while submission in flight")
	// ErrConfirmationRequired guards the destructive delete path.
	ErrConfirmationRequired = errors.New("delete requires explicit confirmation")
	ErrOrderNotFound        = errors.New("order not found")
)

// ValidationError is local and non-retryable until the input is corrected.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string { return "missing " + e.Field }

// RemoteError wraps a failed store read or write. Retryable: no local state
// was mutated, a fresh user action may try again.
type RemoteError struct {
	Op  string // "append", "update", "remove", "read"
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }
