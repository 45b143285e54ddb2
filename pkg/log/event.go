package log

import (
	"time"
)

// Event represents a connection supervision event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"2,keyasint"`

	// ConnectionID uniquely identifies an established connection (UUID).
	// Empty for events emitted before a transport exists.
	ConnectionID string `cbor:"3,keyasint,omitempty"`

	// RemoteAddr is the peer address being dialed or connected to.
	RemoteAddr string `cbor:"4,keyasint,omitempty"`

	// LocalAddr is the local address of an established connection.
	LocalAddr string `cbor:"5,keyasint,omitempty"`

	// Message is a human-readable description.
	Message string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (at most one is set).
	Attempt     *AttemptEvent     `cbor:"7,keyasint,omitempty"` // connect attempts
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"` // lifecycle transitions
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"` // connect failures
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryInfo is an informational event (e.g. a poll timed out
	// without the connection becoming established).
	CategoryInfo Category = 0

	// CategoryAttempt indicates a new connect attempt was issued.
	CategoryAttempt Category = 1

	// CategoryConnected indicates a transport was established.
	CategoryConnected Category = 2

	// CategoryError indicates a connect attempt failed.
	CategoryError Category = 3

	// CategoryState indicates a supervisor lifecycle transition.
	CategoryState Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryInfo:
		return "INFO"
	case CategoryAttempt:
		return "ATTEMPT"
	case CategoryConnected:
		return "CONNECTED"
	case CategoryError:
		return "ERROR"
	case CategoryState:
		return "STATE"
	default:
		return "UNKNOWN"
	}
}

// AttemptEvent carries retry-state details for connect attempt events.
type AttemptEvent struct {
	// FailureCount is the consecutive failure count at the time of the event.
	FailureCount int `cbor:"1,keyasint"`

	// Elapsed is how long the attempt has been outstanding.
	Elapsed time.Duration `cbor:"2,keyasint,omitempty"`

	// NextRetry is the computed delay before the next attempt.
	NextRetry time.Duration `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent describes a supervisor or lifecycle state transition.
type StateChangeEvent struct {
	// OldState is the state before the transition.
	OldState string `cbor:"1,keyasint"`

	// NewState is the state after the transition.
	NewState string `cbor:"2,keyasint"`

	// Reason optionally explains the transition.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData describes a connect failure.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Target is the address the failed attempt was dialing.
	Target string `cbor:"2,keyasint,omitempty"`

	// Network reports whether the failure was a network I/O error
	// (refused, timeout, unreachable) as opposed to any other cause.
	Network bool `cbor:"3,keyasint,omitempty"`
}
