package chat

import "errors"

var (
	// ErrStreamClosed is returned when a UI stream is written to after
	// finalization. This is programmer error, not a modeled outcome.
	ErrStreamClosed = errors.New("ui stream already closed")

	// ErrToolNotRegistered is returned when the completion provider
	// requests a tool missing from the roster. The roster is fixed at
	// startup, so this is a configuration fault; the turn aborts and
	// nothing is committed.
	ErrToolNotRegistered = errors.New("tool not registered")

	// ErrInvalidToolParams is returned when a provider tool call fails
	// schema validation.
	ErrInvalidToolParams = errors.New("invalid tool parameters")
)
