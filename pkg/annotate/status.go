package annotate

import "time"

// Status describes an Overlay at one point in time.
type Status struct {
	// Running indicates if the overlay is active.
	Running bool
	// Headless is set for overlays without a window.
	Headless bool
	// StartTime is when the overlay was last started.
	StartTime time.Time
	// LastError is the most recent runtime error.
	LastError error
	// ConfigSource describes where the configuration came from.
	ConfigSource string
	// Tools lists the configured tool names.
	Tools []string
}

// ErrorHandler is a callback for runtime errors.
// It is called asynchronously; do not block in the handler.
type ErrorHandler func(err error)

// EventHandler is a callback for lifecycle events.
// It is called asynchronously; do not block in the handler.
type EventHandler func(event Event)

// Event represents a lifecycle event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
}

// EventType enumerates lifecycle event types.
type EventType int

const (
	// EventStarted is emitted when the overlay starts.
	EventStarted EventType = iota
	// EventStopped is emitted when the overlay stops.
	EventStopped
	// EventConfigReloaded is emitted after a new configuration took effect.
	EventConfigReloaded
	// EventError is emitted when a recoverable error occurs.
	EventError
)

// String returns a human-readable representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventConfigReloaded:
		return "config_reloaded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
