package draw

import (
	"image"
	"image/color"

	"github.com/opd-ai/go-annotate/internal/surface"
)

// paintCall is one Stroke or Fill seen by a recorder.
type paintCall struct {
	fill     bool
	color    color.RGBA
	width    float64
	cap      surface.LineCap
	join     surface.LineJoin
	operator surface.Operator
	points   [][2]float64
	closed   bool
}

// recorder is a Surface that records what would be drawn.
type recorder struct {
	color    color.RGBA
	width    float64
	cap      surface.LineCap
	join     surface.LineJoin
	operator surface.Operator

	points [][2]float64
	closed bool
	calls  []paintCall

	saves, restores, arcs, copies int
	copyErr                       error
}

func (r *recorder) Size() (int, int)                  { return 200, 200 }
func (r *recorder) SetSourceColor(c color.RGBA)       { r.color = c }
func (r *recorder) SetLineWidth(w float64)            { r.width = w }
func (r *recorder) SetLineCap(c surface.LineCap)      { r.cap = c }
func (r *recorder) SetLineJoin(j surface.LineJoin)    { r.join = j }
func (r *recorder) SetOperator(op surface.Operator)   { r.operator = op }
func (r *recorder) MoveTo(x, y float64)               { r.points = append(r.points, [2]float64{x, y}) }
func (r *recorder) LineTo(x, y float64)               { r.points = append(r.points, [2]float64{x, y}) }
func (r *recorder) ClosePath()                        { r.closed = true }
func (r *recorder) Save()                             { r.saves++ }
func (r *recorder) Restore()                          { r.restores++ }
func (r *recorder) Translate(tx, ty float64)          {}
func (r *recorder) Scale(sx, sy float64)              {}
func (r *recorder) Clear()                            {}
func (r *recorder) CopyFrom(src surface.Surface) error { r.copies++; return r.copyErr }

func (r *recorder) Arc(xc, yc, radius, angle1, angle2 float64) {
	r.arcs++
	r.points = append(r.points, [2]float64{xc, yc})
}

func (r *recorder) Stroke() { r.record(false) }
func (r *recorder) Fill()   { r.record(true) }

func (r *recorder) record(fill bool) {
	r.calls = append(r.calls, paintCall{
		fill:     fill,
		color:    r.color,
		width:    r.width,
		cap:      r.cap,
		join:     r.join,
		operator: r.operator,
		points:   r.points,
		closed:   r.closed,
	})
	r.points = nil
	r.closed = false
}

// invalidations records repaint requests.
type invalidations struct {
	rects []image.Rectangle
	full  int
}

func (i *invalidations) InvalidateRect(r image.Rectangle) { i.rects = append(i.rects, r) }
func (i *invalidations) InvalidateAll()                   { i.full++ }
