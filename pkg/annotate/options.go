package annotate

import (
	"time"
)

// DefaultShutdownTimeout is the default timeout for graceful shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// Options configures an Overlay.
type Options struct {
	// Width and Height override the configured canvas size. Zero means the
	// configuration's value, then the screen size.
	Width  int
	Height int

	// WindowTitle overrides the window title.
	WindowTitle string

	// Headless draws on an in-memory canvas without opening a window.
	// Pointer input is then fed through Press, Motion and Release.
	Headless bool

	// Active starts the overlay with painting enabled instead of letting
	// pointer input through to the desktop.
	Active bool

	// Debug logs every drawing call. The configuration's debug switch has
	// the same effect.
	Debug bool

	// ShutdownTimeout sets the maximum time to wait for graceful shutdown.
	// Zero means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// Logger receives diagnostics. If nil, nothing is logged.
	Logger Logger

	// Metrics collects counters. If nil, a new Metrics is used.
	Metrics *Metrics

	// WatchConfig reloads tools, bindings and colors when the configuration
	// file changes. Only file-based configurations can be watched.
	WatchConfig bool

	// WatchDebounce coalesces rapid file changes. Zero means 500ms.
	WatchDebounce time.Duration
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		WatchConfig: true,
	}
}

// Logger interface for custom logging, with slog-style key-value pairs.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}
