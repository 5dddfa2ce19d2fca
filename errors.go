package expectr

import "errors"

// Sentinel errors returned by session operations. Most failures are wrapped
// with call context, so callers should test with errors.Is.
var (
	// ErrInvalidPattern reports an expect pattern that is neither a string
	// nor a *regexp.Regexp. The call fails before any waiting begins.
	ErrInvalidPattern = errors.New("pattern must be a string or *regexp.Regexp")

	// ErrMatchTimeout reports a watchdog expiry before the pattern
	// appeared. A process that dies mid-wait fails with the same class,
	// since a dead process can never produce a future match.
	ErrMatchTimeout = errors.New("timed out waiting for pattern")

	// ErrProcessDead reports I/O attempted against a confirmed-dead
	// process.
	ErrProcessDead = errors.New("process is dead")

	// ErrInteractActive reports an Interact call while an interact session
	// is already running.
	ErrInteractActive = errors.New("interact session already active")

	// ErrExpectInFlight reports a second expect wait started while one is
	// still outstanding.
	ErrExpectInFlight = errors.New("expect already in flight")
)
