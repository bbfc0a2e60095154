package surface

import (
	"image/color"
	"math"
)

// arcTolerance is the maximum distance in device pixels between a flattened
// arc and the true curve.
const arcTolerance = 0.1

type point struct{ x, y float64 }

type subpath struct {
	pts    []point
	closed bool
}

// path is a device-space path made of polylines.
type path struct {
	subs []subpath
}

func (p *path) moveTo(x, y float64) {
	p.subs = append(p.subs, subpath{pts: []point{{x, y}}})
}

func (p *path) lineTo(x, y float64) {
	if len(p.subs) == 0 {
		p.moveTo(x, y)
		return
	}
	last := &p.subs[len(p.subs)-1]
	if last.closed {
		start := last.pts[0]
		p.moveTo(start.x, start.y)
		last = &p.subs[len(p.subs)-1]
	}
	last.pts = append(last.pts, point{x, y})
}

func (p *path) closePath() {
	if len(p.subs) > 0 {
		p.subs[len(p.subs)-1].closed = true
	}
}

func (p *path) hasCurrentPoint() bool {
	return len(p.subs) > 0
}

func (p *path) empty() bool {
	return len(p.subs) == 0
}

func (p *path) reset() {
	p.subs = p.subs[:0]
}

// bounds returns the bounding box of every path point.
func (p *path) bounds() (minX, minY, maxX, maxY float64, ok bool) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range p.subs {
		for _, pt := range s.pts {
			minX = math.Min(minX, pt.x)
			minY = math.Min(minY, pt.y)
			maxX = math.Max(maxX, pt.x)
			maxY = math.Max(maxY, pt.y)
			ok = true
		}
	}
	return minX, minY, maxX, maxY, ok
}

// state is the part of a surface saved and restored by Save and Restore.
type state struct {
	color     color.RGBA
	lineWidth float64
	lineCap   LineCap
	lineJoin  LineJoin
	operator  Operator
	matrix    Matrix
}

// pen holds the drawing state and path shared by every backend. Backends
// embed it and implement Stroke, Fill and the pixel operations.
type pen struct {
	st    state
	stack []state
	path  path
}

func newPen() pen {
	return pen{st: state{
		color:     color.RGBA{A: 255},
		lineWidth: 2,
		lineCap:   LineCapButt,
		lineJoin:  LineJoinMiter,
		operator:  OperatorOver,
		matrix:    Identity(),
	}}
}

func (p *pen) SetSourceColor(c color.RGBA) { p.st.color = c }
func (p *pen) SetLineWidth(w float64)      { p.st.lineWidth = w }
func (p *pen) SetLineCap(c LineCap)        { p.st.lineCap = c }
func (p *pen) SetLineJoin(j LineJoin)      { p.st.lineJoin = j }
func (p *pen) SetOperator(op Operator)     { p.st.operator = op }

func (p *pen) MoveTo(x, y float64) {
	p.path.moveTo(p.st.matrix.TransformPoint(x, y))
}

func (p *pen) LineTo(x, y float64) {
	p.path.lineTo(p.st.matrix.TransformPoint(x, y))
}

func (p *pen) ClosePath() {
	p.path.closePath()
}

// Arc adds a circular arc in user space, flattened to line segments in device
// space. Like cairo_arc, it connects to the current point with a line, and
// angle2 is raised by full turns until it is not below angle1.
func (p *pen) Arc(xc, yc, radius, angle1, angle2 float64) {
	for angle2 < angle1 {
		angle2 += 2 * math.Pi
	}
	sweep := angle2 - angle1

	n := arcSegments(p.st.matrix, radius, sweep)
	for i := 0; i <= n; i++ {
		a := angle1 + sweep*float64(i)/float64(n)
		x, y := xc+radius*math.Cos(a), yc+radius*math.Sin(a)
		if i == 0 && !p.path.hasCurrentPoint() {
			p.MoveTo(x, y)
			continue
		}
		p.LineTo(x, y)
	}
}

// arcSegments returns how many segments keep a flattened arc within
// arcTolerance of the curve once transformed to device space.
func arcSegments(m Matrix, radius, sweep float64) int {
	rx, ry := m.TransformDistance(radius, 0)
	sx, sy := m.TransformDistance(0, radius)
	r := math.Max(math.Hypot(rx, ry), math.Hypot(sx, sy))

	n := 4
	if r > arcTolerance {
		step := 2 * math.Acos(1-arcTolerance/r)
		if step > 0 {
			n = int(math.Ceil(sweep / step))
		}
	}
	if n < 4 {
		n = 4
	}
	if n > 1024 {
		n = 1024
	}
	return n
}

func (p *pen) Save() {
	p.stack = append(p.stack, p.st)
}

// Restore pops the state pushed by the matching Save. It does nothing when
// the stack is empty. The path is not part of the saved state.
func (p *pen) Restore() {
	if len(p.stack) == 0 {
		return
	}
	p.st = p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *pen) Translate(tx, ty float64) { p.st.matrix.Translate(tx, ty) }
func (p *pen) Scale(sx, sy float64)     { p.st.matrix.Scale(sx, sy) }
