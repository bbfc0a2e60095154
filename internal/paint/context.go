// Package paint defines tool presets: what a device draws and how.
package paint

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/opd-ai/go-annotate/internal/stroke"
)

// Type is the kind of mark a tool makes.
type Type int

const (
	Pen Type = iota
	Eraser
	Recolor
	Line
	Ellipse
	Rectangle
)

// String returns the config spelling of the type.
func (t Type) String() string {
	switch t {
	case Pen:
		return "pen"
	case Eraser:
		return "eraser"
	case Recolor:
		return "recolor"
	case Line:
		return "line"
	case Ellipse:
		return "ellipse"
	case Rectangle:
		return "rectangle"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// IsShape reports whether the tool is previewed while dragged and committed
// on release, as opposed to inking on every sample.
func (t Type) IsShape() bool {
	return t == Line || t == Ellipse || t == Rectangle
}

// ParseType parses a tool type name. Matching is case-insensitive.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pen":
		return Pen, nil
	case "eraser":
		return Eraser, nil
	case "recolor":
		return Recolor, nil
	case "line":
		return Line, nil
	case "ellipse":
		return Ellipse, nil
	case "rect", "rectangle":
		return Rectangle, nil
	default:
		return Pen, fmt.Errorf("unknown tool type %q", s)
	}
}

// Context is a named tool preset. A single Context is shared by every device
// that currently has the tool selected and is not modified while drawing.
type Context struct {
	Name          string
	Type          Type
	Width         int
	ArrowSize     float64
	ArrowPosition stroke.ArrowPosition
	MinWidth      int
	// MaxWidth caps the stroke width; zero means no cap.
	MaxWidth int
	Color    color.RGBA
	// Pressure is assumed for devices that report none.
	Pressure float64
}

// NewContext returns a preset with the defaults every config entry starts from.
func NewContext(name string, typ Type, width int, c color.RGBA) *Context {
	return &Context{
		Name:     name,
		Type:     typ,
		Width:    width,
		MinWidth: 1,
		Color:    c,
		Pressure: 1,
	}
}

// StrokeWidth returns the instantaneous stroke width for a sample. Without a
// pressure reading the preset's default pressure is used.
func (c *Context) StrokeWidth(pressure float64, ok bool) int {
	if !ok {
		pressure = c.Pressure
	}
	if pressure < 0 {
		pressure = 0
	} else if pressure > 1 {
		pressure = 1
	}

	w := c.MinWidth + int(pressure*float64(c.Width-c.MinWidth)+0.5)
	return c.ClampWidth(w)
}

// ClampWidth limits w to the preset's maximum width and to at least 1.
func (c *Context) ClampWidth(w int) int {
	if c.MaxWidth > 0 && w > c.MaxWidth {
		w = c.MaxWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

// HasArrows reports whether the preset draws arrowheads at all.
func (c *Context) HasArrows() bool {
	return c.ArrowSize != 0 && c.ArrowPosition != stroke.ArrowNone
}

// Clone returns a copy that can be modified without affecting c.
func (c *Context) Clone() *Context {
	cp := *c
	return &cp
}
