package draw

import (
	"image"

	"github.com/google/uuid"

	"github.com/opd-ai/go-annotate/internal/session"
)

// EventKind names the primitive that produced an Event.
type EventKind int

const (
	EventLine EventKind = iota
	EventRectangle
	EventEllipse
	EventArrow
	EventPreview
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventLine:
		return "line"
	case EventRectangle:
		return "rectangle"
	case EventEllipse:
		return "ellipse"
	case EventArrow:
		return "arrow"
	case EventPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// Event reports one drawing call. Drawn is false when the target surface
// was unavailable and nothing was rendered.
type Event struct {
	Kind    EventKind
	Device  session.DeviceID
	Gesture uuid.UUID
	Damage  image.Rectangle
	Drawn   bool
}

// Observer is notified after every drawing call.
type Observer func(Event)
