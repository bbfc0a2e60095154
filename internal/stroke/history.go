// Package stroke tracks the pointer samples of a gesture and derives arrowhead
// placement from them.
package stroke

// Point is one sampled pointer location and the stroke thickness at that sample.
type Point struct {
	X     int
	Y     int
	Width int
}

// History is the sample list of one device, viewed newest-first.
//
// Points are stored oldest-first so that Prepend is an amortized append.
// The zero value is an empty history ready for use.
type History struct {
	points []Point
}

// Prepend records a new sample as the head of the history.
func (h *History) Prepend(x, y, width int) {
	h.points = append(h.points, Point{X: x, Y: y, Width: width})
}

// Clear drops all samples. It is a no-op on an empty history.
func (h *History) Clear() {
	h.points = h.points[:0]
}

// Reset clears the history and seeds it with a single point.
func (h *History) Reset(p Point) {
	h.points = append(h.points[:0], p)
}

// Len returns the number of samples.
func (h *History) Len() int {
	return len(h.points)
}

// Head returns the most recent sample.
func (h *History) Head() (Point, bool) {
	if len(h.points) == 0 {
		return Point{}, false
	}
	return h.points[len(h.points)-1], true
}

// Tail returns the oldest sample, the start of the gesture.
func (h *History) Tail() (Point, bool) {
	if len(h.points) == 0 {
		return Point{}, false
	}
	return h.points[0], true
}

// Points returns a newest-first copy of the samples.
func (h *History) Points() []Point {
	out := make([]Point, len(h.points))
	for i, p := range h.points {
		out[len(h.points)-1-i] = p
	}
	return out
}

// scan calls fn for each sample, starting at the head when fromHead is set
// and at the tail otherwise. Scanning stops when fn returns false.
func (h *History) scan(fromHead bool, fn func(Point) bool) {
	n := len(h.points)
	for i := 0; i < n; i++ {
		idx := i
		if fromHead {
			idx = n - 1 - i
		}
		if !fn(h.points[idx]) {
			return
		}
	}
}
