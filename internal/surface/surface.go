// Package surface provides the Cairo-style drawing handle the stroke engine
// renders through, with an Ebiten backend for the overlay window and a
// software backend for headless use.
package surface

import (
	"errors"
	"image/color"
)

// ErrIncompatibleSurface is returned when copying between surfaces of
// different backends or sizes.
var ErrIncompatibleSurface = errors.New("surface: incompatible surface")

// LineCap is the shape of stroke end points.
type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin is the shape of stroke corners.
type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// Operator is the compositing mode for Stroke and Fill.
type Operator int

const (
	// OperatorOver paints the source over the destination.
	OperatorOver Operator = iota
	// OperatorClear makes the covered area fully transparent.
	OperatorClear
	// OperatorAtop paints only where the destination already has ink.
	OperatorAtop
	// OperatorSource replaces the covered area with the source.
	OperatorSource
)

// String returns the operator name.
func (op Operator) String() string {
	switch op {
	case OperatorOver:
		return "over"
	case OperatorClear:
		return "clear"
	case OperatorAtop:
		return "atop"
	case OperatorSource:
		return "source"
	default:
		return "unknown"
	}
}

// Surface is a drawable canvas with Cairo drawing semantics: path
// construction under a transform, then Stroke or Fill with the current
// source color, line settings and operator. Stroke and Fill consume the path.
//
// Coordinates passed to MoveTo, LineTo and Arc are transformed by the current
// matrix when the path is built. The line width is in device units.
type Surface interface {
	Size() (width, height int)

	SetSourceColor(c color.RGBA)
	SetLineWidth(w float64)
	SetLineCap(c LineCap)
	SetLineJoin(j LineJoin)
	SetOperator(op Operator)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(xc, yc, radius, angle1, angle2 float64)
	ClosePath()

	Stroke()
	Fill()

	Save()
	Restore()
	Translate(tx, ty float64)
	Scale(sx, sy float64)

	// CopyFrom replaces the whole content of the surface with src.
	CopyFrom(src Surface) error
	// Clear makes the whole surface transparent.
	Clear()
}
