// Package draw renders strokes, shapes and arrowheads onto surfaces and
// tracks the regions that need repainting.
package draw

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/session"
	"github.com/opd-ai/go-annotate/internal/stroke"
	"github.com/opd-ai/go-annotate/internal/surface"
)

// Rasterizer draws the primitives of a device's gesture.
//
// A nil target surface makes a primitive a no-op that still counts as
// painted, so SomethingPainted does not imply that a pixel changed.
type Rasterizer struct {
	inv       Invalidator
	logger    *slog.Logger
	observers []Observer

	switchColor    color.RGBA
	hasSwitchColor bool

	modified bool
	painted  bool
}

// NewRasterizer reports damage to inv. A nil logger discards debug output.
func NewRasterizer(inv Invalidator, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rasterizer{inv: inv, logger: logger}
}

// Observe registers fn to be called after every drawing call.
func (r *Rasterizer) Observe(fn Observer) {
	r.observers = append(r.observers, fn)
}

// SetSwitchColor overrides the color of every tool until ClearSwitchColor.
func (r *Rasterizer) SetSwitchColor(c color.RGBA) {
	r.switchColor = c
	r.hasSwitchColor = true
}

// ClearSwitchColor restores the tools' own colors.
func (r *Rasterizer) ClearSwitchColor() {
	r.hasSwitchColor = false
}

// SwitchColor returns the override color, if one is active.
func (r *Rasterizer) SwitchColor() (color.RGBA, bool) {
	return r.switchColor, r.hasSwitchColor
}

// CanvasModified reports whether a surface was drawn on since the last
// ResetFlags.
func (r *Rasterizer) CanvasModified() bool { return r.modified }

// SomethingPainted reports whether any primitive ran since the last
// ResetFlags, even one that had no surface to draw on.
func (r *Rasterizer) SomethingPainted() bool { return r.painted }

// MarkModified records a canvas change made outside the primitives, such as
// an undo or a clear.
func (r *Rasterizer) MarkModified() {
	r.modified = true
	r.painted = true
}

// ResetFlags clears CanvasModified and SomethingPainted.
func (r *Rasterizer) ResetFlags() {
	r.modified = false
	r.painted = false
}

// DrawLine strokes a round-capped line from p1 to p2 with the gesture width.
func (r *Rasterizer) DrawLine(s *session.Session, dst surface.Surface, p1, p2 image.Point) image.Rectangle {
	damage := boxDamage(p1, p2, s.Width)
	r.logger.Debug("draw line", "device", s.Device, "from", p1, "to", p2)

	drawn := dst != nil
	if drawn {
		r.setPen(s, dst)
		dst.MoveTo(float64(p1.X), float64(p1.Y))
		dst.LineTo(float64(p2.X), float64(p2.Y))
		dst.Stroke()
	}
	r.finish(s, EventLine, damage, drawn)
	return damage
}

// DrawRectangle strokes the outline of the box with corners p1 and p2.
func (r *Rasterizer) DrawRectangle(s *session.Session, dst surface.Surface, p1, p2 image.Point) image.Rectangle {
	damage := boxDamage(p1, p2, s.Width)
	r.logger.Debug("draw rectangle", "device", s.Device, "from", p1, "to", p2)

	drawn := dst != nil
	if drawn {
		x1, y1, x2, y2 := float64(p1.X), float64(p1.Y), float64(p2.X), float64(p2.Y)
		r.setPen(s, dst)
		dst.MoveTo(x1, y1)
		dst.LineTo(x2, y1)
		dst.LineTo(x2, y2)
		dst.LineTo(x1, y2)
		dst.ClosePath()
		dst.Stroke()
	}
	r.finish(s, EventRectangle, damage, drawn)
	return damage
}

// DrawEllipse strokes the axis-aligned ellipse inscribed in the box with
// corners p1 and p2. A box with no height or width degenerates to a line.
func (r *Rasterizer) DrawEllipse(s *session.Session, dst surface.Surface, p1, p2 image.Point) image.Rectangle {
	damage := boxDamage(p1, p2, s.Width)
	r.logger.Debug("draw ellipse", "device", s.Device, "from", p1, "to", p2)

	drawn := dst != nil
	if drawn {
		r.setPen(s, dst)
		rx := math.Abs(float64(p2.X-p1.X)) / 2
		ry := math.Abs(float64(p2.Y-p1.Y)) / 2
		if rx == 0 || ry == 0 {
			dst.MoveTo(float64(p1.X), float64(p1.Y))
			dst.LineTo(float64(p2.X), float64(p2.Y))
		} else {
			// Scale only while building the path so the stroke width
			// stays uniform.
			dst.Save()
			dst.Translate(float64(p1.X+p2.X)/2, float64(p1.Y+p2.Y)/2)
			dst.Scale(rx, ry)
			dst.Arc(0, 0, 1, 0, 2*math.Pi)
			dst.ClosePath()
			dst.Restore()
		}
		dst.Stroke()
	}
	r.finish(s, EventEllipse, damage, drawn)
	return damage
}

// DrawArrow draws an arrowhead whose tip is at anchor, pointing in direction
// (radians). The stroke under the front of the head is erased first so the
// raw line does not poke through the tip.
func (r *Rasterizer) DrawArrow(s *session.Session, dst surface.Surface, anchor image.Point, width int, direction float64) image.Rectangle {
	w := width / 2
	damage := arrowDamage(anchor, w, direction, s.Width+1)
	r.logger.Debug("draw arrow", "device", s.Device, "at", anchor, "width", width, "direction", direction)

	drawn := dst != nil
	if drawn {
		head := arrowhead(anchor, w, direction)
		origin := arrowOrigin(anchor, w, direction)
		fill := r.activeColor(s.Context)

		r.setPen(s, dst)
		dst.SetOperator(surface.OperatorClear)
		dst.SetLineWidth(float64(s.Width + 1))
		dst.MoveTo(float64(anchor.X), float64(anchor.Y))
		dst.LineTo(origin[0], origin[1])
		dst.Stroke()
		dst.SetOperator(toolOperator(s.Context.Type))

		dst.SetSourceColor(fill)
		tracePolygon(dst, head)
		dst.Fill()

		dst.SetSourceColor(paint.OutlineColor)
		dst.SetLineWidth(1)
		tracePolygon(dst, head)
		dst.Stroke()

		dst.SetSourceColor(fill)
	}
	r.finish(s, EventArrow, damage, drawn)
	return damage
}

// DrawArrowWhenApplicable draws the arrowhead at pos of the device's gesture
// if its tool asks for one there and the history allows it. The start arrow
// of a pen is drawn once per gesture; shapes redraw theirs every frame.
func (r *Rasterizer) DrawArrowWhenApplicable(s *session.Session, dst surface.Surface, pos stroke.ArrowPosition) (image.Rectangle, bool) {
	ctx := s.Context
	if ctx.ArrowSize == 0 || !ctx.ArrowPosition.Has(pos) {
		return image.Rectangle{}, false
	}

	width := int(ctx.ArrowSize * float64(ctx.Width) / 2)
	anchor, ok := stroke.FindArrowAnchor(&s.History, ctx.ArrowSize, width*3, pos)
	if !ok {
		return image.Rectangle{}, false
	}

	switch pos {
	case stroke.ArrowStart:
		if s.StartArrowPainted() && ctx.Type == paint.Pen {
			return image.Rectangle{}, false
		}
		tail, _ := s.History.Tail()
		damage := r.DrawArrow(s, dst, image.Pt(tail.X, tail.Y), anchor.Width, anchor.Direction)
		s.MarkStartArrowPainted()
		return damage, true
	case stroke.ArrowEnd:
		head, _ := s.History.Head()
		return r.DrawArrow(s, dst, image.Pt(head.X, head.Y), anchor.Width, anchor.Direction), true
	default:
		return image.Rectangle{}, false
	}
}

func (r *Rasterizer) setPen(s *session.Session, dst surface.Surface) {
	dst.SetSourceColor(r.activeColor(s.Context))
	dst.SetOperator(toolOperator(s.Context.Type))
	dst.SetLineWidth(float64(s.Width))
	dst.SetLineCap(surface.LineCapRound)
	dst.SetLineJoin(surface.LineJoinRound)
}

func (r *Rasterizer) activeColor(ctx *paint.Context) color.RGBA {
	if r.hasSwitchColor {
		return r.switchColor
	}
	return ctx.Color
}

func (r *Rasterizer) finish(s *session.Session, kind EventKind, damage image.Rectangle, drawn bool) {
	if drawn {
		r.modified = true
		if r.inv != nil {
			r.inv.InvalidateRect(damage)
		}
	}
	r.painted = true
	r.emit(Event{Kind: kind, Device: s.Device, Gesture: s.Gesture, Damage: damage, Drawn: drawn})
}

func (r *Rasterizer) emit(ev Event) {
	for _, fn := range r.observers {
		fn(ev)
	}
}

func toolOperator(t paint.Type) surface.Operator {
	switch t {
	case paint.Eraser:
		return surface.OperatorClear
	case paint.Recolor:
		return surface.OperatorAtop
	default:
		return surface.OperatorOver
	}
}

// boxDamage is the box spanned by p1 and p2 grown by half the stroke width.
func boxDamage(p1, p2 image.Point, width int) image.Rectangle {
	x := min(p1.X, p2.X) - width/2
	y := min(p1.Y, p2.Y) - width/2
	w := abs(p1.X-p2.X) + width
	h := abs(p1.Y-p2.Y) + width
	return image.Rect(x, y, x+w, y+h)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// arrowDamage is the square of half-extent 4w+1 around the tip, grown to
// cover the outlined kite and the erase stroke of eraseWidth from the tip to
// the origin. The back corners lie 3w√2 from the origin, behind the tip
// square.
func arrowDamage(anchor image.Point, w int, direction float64, eraseWidth int) image.Rectangle {
	damage := image.Rect(anchor.X-4*w-1, anchor.Y-4*w-1, anchor.X+4*w+1, anchor.Y+4*w+1)
	head := arrowhead(anchor, w, direction)
	damage = damage.Union(hull(head[:], 1))
	tip := [2]float64{float64(anchor.X), float64(anchor.Y)}
	erase := [][2]float64{tip, arrowOrigin(anchor, w, direction)}
	return damage.Union(hull(erase, float64(eraseWidth)/2+1))
}

// hull is the bounding box of pts grown by pad, rounded outwards.
func hull(pts [][2]float64, pad float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	return image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)), int(math.Ceil(maxY+pad)),
	)
}

// arrowOrigin is the point 4w behind the tip along direction; the head's
// vertices are laid out relative to it.
func arrowOrigin(anchor image.Point, w int, direction float64) [2]float64 {
	fw := float64(w)
	return [2]float64{
		float64(anchor.X) - 4*fw*math.Cos(direction),
		float64(anchor.Y) - 4*fw*math.Sin(direction),
	}
}

// arrowhead returns the kite: tip, one back corner, notch, other back corner.
func arrowhead(anchor image.Point, w int, direction float64) [4][2]float64 {
	o := arrowOrigin(anchor, w, direction)
	fw := float64(w)
	c, s := math.Cos(direction), math.Sin(direction)
	return [4][2]float64{
		{o[0] + 4*fw*c, o[1] + 4*fw*s},
		{o[0] - 3*fw*c + 3*fw*s, o[1] - 3*fw*c - 3*fw*s},
		{o[0] - 2*fw*c, o[1] - 2*fw*s},
		{o[0] - 3*fw*c - 3*fw*s, o[1] + 3*fw*c - 3*fw*s},
	}
}

func tracePolygon(dst surface.Surface, pts [4][2]float64) {
	dst.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		dst.LineTo(p[0], p[1])
	}
	dst.ClosePath()
}
