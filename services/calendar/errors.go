package calendar

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential means the session has no usable calendar
	// authorization; the user must (re)authorize before anything else.
	ErrNoCredential = errors.New("no valid calendar credential")

	// ErrSlotConflict means the chosen slot filled up between the
	// availability search and the booking call.
	ErrSlotConflict = errors.New("slot no longer available")
)

// TransportError wraps network and timeout failures talking to the
// calendar backend. Always recoverable by retrying the turn.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
