// Package session keeps the per-device state of gestures in progress.
package session

import (
	"sort"

	"github.com/google/uuid"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

// DeviceID identifies an input device, e.g. "mouse" or "touch:3".
type DeviceID string

// Session is the runtime state of one input device.
type Session struct {
	Device DeviceID

	// History holds the samples of the gesture in progress.
	History stroke.History
	// Context is the tool selected at the last press.
	Context *paint.Context
	// Width is the stroke width of the gesture, already limited by the
	// tool's maximum width.
	Width int

	LastX, LastY int
	// Active is set between press and release.
	Active bool
	// Gesture identifies the gesture in progress.
	Gesture uuid.UUID

	startArrowPainted bool
}

// Begin starts a gesture with ctx at (x, y).
func (s *Session) Begin(ctx *paint.Context, x, y, width int) {
	s.Context = ctx
	s.Width = ctx.ClampWidth(width)
	s.History.Reset(stroke.Point{X: x, Y: y, Width: s.Width})
	s.LastX, s.LastY = x, y
	s.Active = true
	s.Gesture = uuid.New()
	s.startArrowPainted = false
}

// StartArrowPainted reports whether the start arrow of the current gesture
// has been drawn.
func (s *Session) StartArrowPainted() bool {
	return s.startArrowPainted
}

// MarkStartArrowPainted latches the start arrow until CleanupContext.
func (s *Session) MarkStartArrowPainted() {
	s.startArrowPainted = true
}

// CleanupContext resets the gesture state of the selected tool. It runs
// once per gesture, on release.
func (s *Session) CleanupContext() {
	s.startArrowPainted = false
}

// End finishes the gesture and drops its samples.
func (s *Session) End() {
	s.CleanupContext()
	s.History.Clear()
	s.Active = false
}

// Registry owns one Session per device for the lifetime of the process.
type Registry struct {
	sessions map[DeviceID]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[DeviceID]*Session)}
}

// Get returns the session of dev, creating it on first use.
func (r *Registry) Get(dev DeviceID) *Session {
	s, ok := r.sessions[dev]
	if !ok {
		s = &Session{Device: dev}
		r.sessions[dev] = s
	}
	return s
}

// Lookup returns the session of dev if the device has been seen.
func (r *Registry) Lookup(dev DeviceID) (*Session, bool) {
	s, ok := r.sessions[dev]
	return s, ok
}

// Active returns the sessions with a gesture in progress, ordered by device.
func (r *Registry) Active() []*Session {
	var out []*Session
	for _, s := range r.sessions {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Device < out[j].Device })
	return out
}

// Len returns the number of known devices.
func (r *Registry) Len() int {
	return len(r.sessions)
}
