package dispatch

import "errors"

var (
	// ErrLoopClosed is returned when posting to or running a closed loop.
	ErrLoopClosed = errors.New("dispatch loop closed")

	// ErrPanic wraps a panic recovered from dispatched work.
	ErrPanic = errors.New("dispatched work panicked")
)
