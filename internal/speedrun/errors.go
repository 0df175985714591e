package speedrun

import "errors"

// Precondition failures. Every mutating operation returns one of these
// (wrapped with the entity name) instead of panicking.
var (
	ErrRunNotStarted     = errors.New("run has not been started")
	ErrRunAlreadyStarted = errors.New("run is already started")
	ErrRunEnded          = errors.New("run has ended")
	ErrRunPaused         = errors.New("run is paused")
	ErrRunNotActive      = errors.New("run is not active")
	ErrNegativeDelta     = errors.New("tick delta is negative")

	ErrSegmentEnded           = errors.New("segment has ended")
	ErrSegmentAlreadyFinished = errors.New("segment is already finished")

	ErrStepAlreadyCompleted = errors.New("step is already completed")
)
