// Package engine turns pointer events into marks on the annotation canvas.
//
// The engine is driven from a single event loop and does no locking.
package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opd-ai/go-annotate/internal/draw"
	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/session"
	"github.com/opd-ai/go-annotate/internal/stroke"
	"github.com/opd-ai/go-annotate/internal/surface"
	"github.com/opd-ai/go-annotate/internal/undo"
)

// Canvas is the pair of surfaces the engine draws on. Persistent holds the
// committed marks; Scratch shows shape previews on top of a copy of it.
type Canvas struct {
	Persistent surface.Surface
	Scratch    surface.Surface
}

// Options configures an Engine.
type Options struct {
	// Invalidator receives the damage of every drawing call. May be nil.
	Invalidator draw.Invalidator

	// Logger receives debug output. If nil, nothing is logged.
	Logger *slog.Logger

	// UndoDepth is the number of undo snapshots. Zero means
	// undo.DefaultDepth; a negative value disables undo.
	UndoDepth int

	// Allocate creates an empty surface the size of the canvas for undo
	// snapshots. If nil, undo is disabled.
	Allocate undo.Allocator
}

// Press describes a button press.
type Press struct {
	// Button is the pressed button, 1 for the primary one.
	Button int
	// Modifiers held during the press select among bound tools.
	Modifiers paint.Modifiers
	// Width is the requested stroke width. Zero derives it from Pressure.
	Width int
	// Pressure in [0, 1], valid when HasPressure is set.
	Pressure    float64
	HasPressure bool
}

// Engine owns the device sessions and draws their gestures.
type Engine struct {
	canvas   Canvas
	presets  *paint.Presets
	sessions *session.Registry
	raster   *draw.Rasterizer
	preview  *draw.Preview
	inv      draw.Invalidator
	undo     *undo.Ring
	logger   *slog.Logger
}

// New creates an engine drawing on canvas with tools selected from presets.
func New(canvas Canvas, presets *paint.Presets, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	raster := draw.NewRasterizer(opts.Invalidator, logger)
	e := &Engine{
		canvas:   canvas,
		presets:  presets,
		sessions: session.NewRegistry(),
		raster:   raster,
		preview:  draw.NewPreview(raster),
		inv:      opts.Invalidator,
		logger:   logger,
	}
	if opts.Allocate != nil && opts.UndoDepth >= 0 {
		e.undo = undo.New(canvas.Persistent, opts.UndoDepth, opts.Allocate)
	}
	return e
}

// Observe registers fn for every drawing event.
func (e *Engine) Observe(fn draw.Observer) {
	e.raster.Observe(fn)
}

// Canvas returns the surfaces the engine draws on.
func (e *Engine) Canvas() Canvas {
	return e.canvas
}

// Session returns the session of dev, if the device has been seen.
func (e *Engine) Session(dev session.DeviceID) (*session.Session, bool) {
	return e.sessions.Lookup(dev)
}

// OnPress starts a gesture with the primary button. A width of zero derives
// the width from the tool's default pressure.
func (e *Engine) OnPress(dev session.DeviceID, x, y, width int) {
	e.Press(dev, x, y, Press{Button: 1, Width: width})
}

// OnPressPressure starts a gesture with the primary button whose width
// follows the reported pressure.
func (e *Engine) OnPressPressure(dev session.DeviceID, x, y int, pressure float64) {
	e.Press(dev, x, y, Press{Button: 1, Pressure: pressure, HasPressure: true})
}

// Press starts a gesture for dev at (x, y). The tool comes from the bindings
// for the device, button and modifiers. Freehand tools put a dot at the
// press point.
func (e *Engine) Press(dev session.DeviceID, x, y int, p Press) {
	ctx := e.presets.Select(string(dev), p.Button, p.Modifiers)
	if ctx == nil {
		e.logger.Warn("no tool for device", "device", dev, "button", p.Button)
		return
	}

	width := p.Width
	if width == 0 {
		width = ctx.StrokeWidth(p.Pressure, p.HasPressure)
	}

	s := e.sessions.Get(dev)
	s.Begin(ctx, x, y, width)
	e.logger.Debug("press", "device", dev, "tool", ctx.Name, "width", s.Width, "gesture", s.Gesture)

	e.checkpoint(s.Gesture)

	if ctx.Type.IsShape() {
		e.refreshScratch(s)
		return
	}
	pt := image.Pt(x, y)
	e.raster.DrawLine(s, e.ink(), pt, pt)
}

// ink returns the surface freehand marks go to. While a shape is dragged
// the scratch surface is on screen, so it receives the marks as well.
func (e *Engine) ink() surface.Surface {
	if e.canvas.Persistent != nil && e.canvas.Scratch != nil && e.Previewing() {
		return surface.Tee(e.canvas.Persistent, e.canvas.Scratch)
	}
	return e.canvas.Persistent
}

// refreshScratch copies the persistent canvas to the scratch surface and
// redraws the previews of every dragging device except skip.
func (e *Engine) refreshScratch(skip *session.Session) {
	if e.canvas.Scratch == nil || e.canvas.Persistent == nil {
		return
	}
	if err := e.canvas.Scratch.CopyFrom(e.canvas.Persistent); err != nil {
		e.logger.Error("sync scratch surface", "error", err)
		return
	}
	e.overlayPreviews(skip)
}

// overlayPreviews draws the current shape of every dragging device except
// skip on top of the scratch surface. Devices that have not moved since the
// press have nothing to show yet.
func (e *Engine) overlayPreviews(skip *session.Session) {
	for _, o := range e.sessions.Active() {
		if o == skip || !o.Context.Type.IsShape() {
			continue
		}
		if anchor, ok := o.History.Tail(); !ok || (anchor.X == o.LastX && anchor.Y == o.LastY) {
			continue
		}
		if err := e.preview.Overlay(o, e.canvas.Scratch, o.LastX, o.LastY); err != nil {
			e.logger.Error("preview overlay", "device", o.Device, "error", err)
		}
	}
}

// OnMotion extends the gesture of dev to (x, y). Devices without a gesture
// in progress are ignored.
func (e *Engine) OnMotion(dev session.DeviceID, x, y int) {
	s, ok := e.sessions.Lookup(dev)
	if !ok || !s.Active {
		return
	}
	e.motion(s, x, y)
}

// OnMotionPressure is OnMotion for devices that report pressure. The width
// of the gesture follows the pressure from this sample on.
func (e *Engine) OnMotionPressure(dev session.DeviceID, x, y int, pressure float64) {
	s, ok := e.sessions.Lookup(dev)
	if !ok || !s.Active {
		return
	}
	s.Width = s.Context.StrokeWidth(pressure, true)
	e.motion(s, x, y)
}

func (e *Engine) motion(s *session.Session, x, y int) {
	if s.Context.Type.IsShape() {
		if err := e.preview.Frame(s, e.canvas.Persistent, e.canvas.Scratch, x, y); err != nil {
			e.logger.Error("preview frame", "device", s.Device, "error", err)
		}
		if e.canvas.Scratch != nil {
			e.overlayPreviews(s)
		}
	} else {
		dst := e.ink()
		e.raster.DrawLine(s, dst, image.Pt(s.LastX, s.LastY), image.Pt(x, y))
		s.History.Prepend(x, y, s.Width)
		e.raster.DrawArrowWhenApplicable(s, dst, stroke.ArrowStart)
	}
	s.LastX, s.LastY = x, y
}

// OnRelease finishes the gesture of dev. Freehand strokes get their end
// arrow; shapes are committed to the persistent canvas at the last pointer
// position. Previews of other devices stay on screen.
func (e *Engine) OnRelease(dev session.DeviceID) {
	s, ok := e.sessions.Lookup(dev)
	if !ok || !s.Active {
		return
	}

	shape := s.Context.Type.IsShape()
	if shape {
		if _, err := e.preview.Commit(s, e.canvas.Persistent, s.LastX, s.LastY); err != nil {
			e.logger.Error("commit shape", "device", dev, "error", err)
		}
		// The scratch surface still shows the last frame; repaint from the
		// persistent canvas.
		if e.inv != nil {
			e.inv.InvalidateAll()
		}
	} else {
		e.raster.DrawArrowWhenApplicable(s, e.ink(), stroke.ArrowEnd)
	}

	e.logger.Debug("release", "device", dev, "gesture", s.Gesture)
	s.End()

	if shape && e.Previewing() {
		e.refreshScratch(nil)
	}
}

// Previewing reports whether any device is dragging a shape, in which case
// the scratch surface holds the picture to display.
func (e *Engine) Previewing() bool {
	for _, s := range e.sessions.Active() {
		if s.Context.Type.IsShape() {
			return true
		}
	}
	return false
}

// Display returns the surface to show on screen.
func (e *Engine) Display() surface.Surface {
	if e.Previewing() && e.canvas.Scratch != nil {
		return e.canvas.Scratch
	}
	return e.canvas.Persistent
}

// CanvasModified reports whether a surface changed since the last TakeFlags.
func (e *Engine) CanvasModified() bool { return e.raster.CanvasModified() }

// SomethingPainted reports whether any drawing call ran since the last
// TakeFlags.
func (e *Engine) SomethingPainted() bool { return e.raster.SomethingPainted() }

// TakeFlags returns CanvasModified and SomethingPainted and resets both.
func (e *Engine) TakeFlags() (modified, painted bool) {
	modified, painted = e.raster.CanvasModified(), e.raster.SomethingPainted()
	e.raster.ResetFlags()
	return modified, painted
}

// SetPresets replaces the tool set. Gestures in progress keep their tool
// until release.
func (e *Engine) SetPresets(p *paint.Presets) {
	e.presets = p
}

// Presets returns the current tool set.
func (e *Engine) Presets() *paint.Presets {
	return e.presets
}

// SetSwitchColor makes every tool draw in c until ClearSwitchColor.
func (e *Engine) SetSwitchColor(c color.RGBA) {
	e.raster.SetSwitchColor(c)
}

// ClearSwitchColor lets tools draw in their own colors again.
func (e *Engine) ClearSwitchColor() {
	e.raster.ClearSwitchColor()
}

// Clear erases both surfaces. The erased state can be undone. Shapes being
// dragged stay on screen.
func (e *Engine) Clear() {
	e.checkpoint(uuid.New())
	if e.canvas.Persistent != nil {
		e.canvas.Persistent.Clear()
	}
	if e.canvas.Scratch != nil {
		e.canvas.Scratch.Clear()
	}
	e.changed()
}

// Undo restores the canvas as it was before the last gesture and reports
// whether anything changed.
func (e *Engine) Undo() (bool, error) {
	return e.step((*undo.Ring).Undo)
}

// Redo reverts the last Undo and reports whether anything changed.
func (e *Engine) Redo() (bool, error) {
	return e.step((*undo.Ring).Redo)
}

// ErrUndoDisabled is returned by Undo and Redo when the engine keeps no
// snapshots.
var ErrUndoDisabled = errors.New("engine: undo disabled")

func (e *Engine) step(fn func(*undo.Ring) (bool, error)) (bool, error) {
	if e.undo == nil {
		return false, ErrUndoDisabled
	}
	ok, err := fn(e.undo)
	if err != nil {
		return false, fmt.Errorf("engine: %w", err)
	}
	if ok {
		e.changed()
	}
	return ok, nil
}

// UndoGesture returns the gesture the next Undo reverts.
func (e *Engine) UndoGesture() (uuid.UUID, bool) {
	if e.undo == nil {
		return uuid.Nil, false
	}
	return e.undo.UndoGesture()
}

// RedoGesture returns the gesture the next Redo reapplies.
func (e *Engine) RedoGesture() (uuid.UUID, bool) {
	if e.undo == nil {
		return uuid.Nil, false
	}
	return e.undo.RedoGesture()
}

func (e *Engine) checkpoint(gesture uuid.UUID) {
	if e.undo == nil || e.canvas.Persistent == nil {
		return
	}
	if err := e.undo.SnapGesture(gesture); err != nil {
		e.logger.Warn("undo snapshot failed", "gesture", gesture, "error", err)
	}
}

func (e *Engine) changed() {
	e.raster.MarkModified()
	if e.Previewing() {
		e.refreshScratch(nil)
	}
	if e.inv != nil {
		e.inv.InvalidateAll()
	}
}
