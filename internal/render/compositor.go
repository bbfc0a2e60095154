package render

// CompositorStatus is the detected state of the desktop compositor.
type CompositorStatus int

const (
	// CompositorUnknown means detection failed.
	CompositorUnknown CompositorStatus = iota
	// CompositorActive means a compositor blends the overlay with the desktop.
	CompositorActive
	// CompositorInactive means the overlay will be drawn opaque.
	CompositorInactive
)

// String returns a human-readable compositor status.
func (cs CompositorStatus) String() string {
	switch cs {
	case CompositorActive:
		return "active"
	case CompositorInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// TransparencyWarning returns the startup warning for a compositor status,
// or an empty string when the overlay will be transparent.
func TransparencyWarning(status CompositorStatus) string {
	switch status {
	case CompositorActive:
		return ""
	case CompositorInactive:
		return "no compositor detected: the overlay needs one (picom, or the desktop's " +
			"built-in compositor) to show the windows below it"
	default:
		return "compositor status unknown: the overlay may hide the windows below it"
	}
}

// CheckTransparency detects the compositor and returns the matching warning.
func CheckTransparency() string {
	return TransparencyWarning(DetectCompositor())
}
