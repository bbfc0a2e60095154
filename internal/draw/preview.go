package draw

import (
	"fmt"
	"image"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/session"
	"github.com/opd-ai/go-annotate/internal/stroke"
	"github.com/opd-ai/go-annotate/internal/surface"
)

// Shape is a tool drawn from an anchor to the pointer.
type Shape int

const (
	ShapeLine Shape = iota
	ShapeRectangle
	ShapeEllipse
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeLine:
		return "line"
	case ShapeRectangle:
		return "rectangle"
	case ShapeEllipse:
		return "ellipse"
	default:
		return "unknown"
	}
}

// ShapeFor returns the shape drawn by a tool type.
func ShapeFor(t paint.Type) (Shape, bool) {
	switch t {
	case paint.Line:
		return ShapeLine, true
	case paint.Rectangle:
		return ShapeRectangle, true
	case paint.Ellipse:
		return ShapeEllipse, true
	default:
		return 0, false
	}
}

// Preview redraws a dragged shape on a scratch copy of the canvas for every
// pointer sample. Only Commit touches the persistent canvas.
type Preview struct {
	r *Rasterizer
}

// NewPreview creates a preview controller drawing through r.
func NewPreview(r *Rasterizer) *Preview {
	return &Preview{r: r}
}

// Frame renders the shape from the gesture anchor to (x, y) on scratch,
// which first receives a fresh copy of persistent. Afterwards the history
// holds only the anchor again.
//
// The history must hold the anchor; calling Frame on an empty history is a
// programming error and panics.
func (p *Preview) Frame(s *session.Session, persistent, scratch surface.Surface, x, y int) error {
	anchor, ok := s.History.Tail()
	if !ok {
		panic("draw: preview frame without an anchor point")
	}
	shape, ok := ShapeFor(s.Context.Type)
	if !ok {
		return fmt.Errorf("draw: %v is not a shape tool", s.Context.Type)
	}

	if scratch != nil && persistent != nil {
		if err := scratch.CopyFrom(persistent); err != nil {
			return fmt.Errorf("restore preview surface: %w", err)
		}
	}
	if p.r.inv != nil {
		p.r.inv.InvalidateAll()
	}
	p.r.modified = true
	p.r.emit(Event{Kind: EventPreview, Device: s.Device, Gesture: s.Gesture, Drawn: scratch != nil})

	p.draw(shape, s, scratch, anchor, image.Pt(x, y))

	s.History.Reset(anchor)
	return nil
}

// Overlay renders the shape of s from its anchor to (x, y) on scratch
// without restoring scratch first, so it lands on top of the previews
// already there.
func (p *Preview) Overlay(s *session.Session, scratch surface.Surface, x, y int) error {
	anchor, ok := s.History.Tail()
	if !ok {
		panic("draw: preview overlay without an anchor point")
	}
	shape, ok := ShapeFor(s.Context.Type)
	if !ok {
		return fmt.Errorf("draw: %v is not a shape tool", s.Context.Type)
	}
	p.draw(shape, s, scratch, anchor, image.Pt(x, y))
	s.History.Reset(anchor)
	return nil
}

// Commit draws the final shape from the gesture anchor to (x, y) on the
// persistent canvas.
func (p *Preview) Commit(s *session.Session, persistent surface.Surface, x, y int) (image.Rectangle, error) {
	anchor, ok := s.History.Tail()
	if !ok {
		panic("draw: shape commit without an anchor point")
	}
	shape, ok := ShapeFor(s.Context.Type)
	if !ok {
		return image.Rectangle{}, fmt.Errorf("draw: %v is not a shape tool", s.Context.Type)
	}

	damage := p.draw(shape, s, persistent, anchor, image.Pt(x, y))
	s.History.Reset(anchor)
	return damage, nil
}

// draw renders one shape and its arrowheads. The arrow search sees the
// anchor and the current end point.
func (p *Preview) draw(shape Shape, s *session.Session, dst surface.Surface, anchor stroke.Point, to image.Point) image.Rectangle {
	from := image.Pt(anchor.X, anchor.Y)

	var damage image.Rectangle
	switch shape {
	case ShapeLine:
		damage = p.r.DrawLine(s, dst, from, to)
	case ShapeRectangle:
		damage = p.r.DrawRectangle(s, dst, from, to)
	case ShapeEllipse:
		damage = p.r.DrawEllipse(s, dst, from, to)
	}

	if s.Context.HasArrows() {
		s.History.Reset(anchor)
		s.History.Prepend(to.X, to.Y, s.Width)
		for _, pos := range []stroke.ArrowPosition{stroke.ArrowStart, stroke.ArrowEnd} {
			if d, ok := p.r.DrawArrowWhenApplicable(s, dst, pos); ok {
				damage = damage.Union(d)
			}
		}
	}
	return damage
}
