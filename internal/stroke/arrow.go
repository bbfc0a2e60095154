package stroke

import (
	"fmt"
	"math"
	"strings"
)

// ArrowPosition selects where on a stroke arrowheads are drawn.
type ArrowPosition int

const (
	ArrowNone  ArrowPosition = 0
	ArrowStart ArrowPosition = 1
	ArrowEnd   ArrowPosition = 2
	ArrowBoth                = ArrowStart | ArrowEnd
)

// Has reports whether every bit of q is set in p.
func (p ArrowPosition) Has(q ArrowPosition) bool {
	return q != ArrowNone && p&q == q
}

// String returns the config spelling of the position.
func (p ArrowPosition) String() string {
	switch p {
	case ArrowNone:
		return "none"
	case ArrowStart:
		return "start"
	case ArrowEnd:
		return "end"
	case ArrowBoth:
		return "both"
	default:
		return fmt.Sprintf("ArrowPosition(%d)", int(p))
	}
}

// ParseArrowPosition parses "none", "start", "end" or "both".
func ParseArrowPosition(s string) (ArrowPosition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ArrowNone, nil
	case "start":
		return ArrowStart, nil
	case "end":
		return ArrowEnd, nil
	case "both":
		return ArrowBoth, nil
	default:
		return ArrowNone, fmt.Errorf("unknown arrow position %q", s)
	}
}

// Anchor is the arrowhead size and direction found for one end of a stroke.
type Anchor struct {
	Width     int
	Direction float64
}

// FindArrowAnchor searches the history for the sample an arrowhead at pos
// should point away from.
//
// ArrowEnd scans from the newest sample towards older ones, ArrowStart from the
// oldest towards newer ones. Scanning stops once a sample is at least
// searchRadius away from the first. A sample qualifies when an arrowhead sized
// from its width fits in the distance travelled; the widest qualifying sample
// wins, later samples winning ties.
func FindArrowAnchor(h *History, arrowSize float64, searchRadius int, pos ArrowPosition) (Anchor, bool) {
	if pos != ArrowStart && pos != ArrowEnd {
		return Anchor{}, false
	}

	var (
		origin    Point
		candidate *Point
		started   bool
		dist      int
	)
	r2 := searchRadius * searchRadius

	h.scan(pos == ArrowEnd, func(p Point) bool {
		if !started {
			origin = p
			started = true
			return dist < r2
		}

		dx, dy := p.X-origin.X, p.Y-origin.Y
		dist = dx*dx + dy*dy

		scaled := float64(p.Width) * arrowSize
		if scaled*2 <= float64(dist) && (candidate == nil || candidate.Width <= p.Width) {
			c := p
			candidate = &c
		}
		return dist < r2
	})

	if candidate == nil {
		return Anchor{}, false
	}

	width := int(float64(candidate.Width) * arrowSize)
	if width < 2 {
		width = 2
	}
	return Anchor{
		Width:     width,
		Direction: math.Atan2(float64(origin.Y-candidate.Y), float64(origin.X-candidate.X)),
	}, true
}
