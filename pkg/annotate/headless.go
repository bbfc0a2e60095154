package annotate

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"log/slog"
	"slices"
	"sync"

	"github.com/opd-ai/go-annotate/internal/config"
	"github.com/opd-ai/go-annotate/internal/draw"
	"github.com/opd-ai/go-annotate/internal/engine"
	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/session"
	"github.com/opd-ai/go-annotate/internal/surface"
)

// headlessCanvas drives an engine on CPU surfaces. All engine calls are
// serialized by mu.
type headlessCanvas struct {
	mu           sync.Mutex
	engine       *engine.Engine
	canvas       *surface.SoftwareSurface
	scratch      *surface.SoftwareSurface
	damage       *draw.DamageTracker
	switchColors []color.RGBA
	metrics      *Metrics
}

var _ Canvas = (*headlessCanvas)(nil)

func newHeadlessCanvas(width, height int, presets *paint.Presets, cfg *config.Config, logger *slog.Logger, metrics *Metrics) *headlessCanvas {
	c := &headlessCanvas{
		canvas:       surface.NewSoftwareSurface(width, height),
		scratch:      surface.NewSoftwareSurface(width, height),
		damage:       draw.NewDamageTracker(width, height),
		switchColors: slices.Clone(cfg.SwitchColors),
		metrics:      metrics,
	}
	c.engine = engine.New(
		engine.Canvas{Persistent: c.canvas, Scratch: c.scratch},
		presets,
		engine.Options{
			Invalidator: c.damage,
			Logger:      logger,
			UndoDepth:   cfg.Overlay.UndoDepth,
			Allocate: func() surface.Surface {
				return surface.NewSoftwareSurface(width, height)
			},
		},
	)
	c.engine.Observe(metrics.recordDraw)
	return c
}

func (c *headlessCanvas) Press(device string, x, y, button int) error {
	return c.press(device, x, y, engine.Press{Button: button})
}

func (c *headlessCanvas) PressPressure(device string, x, y, button int, pressure float64) error {
	if pressure < 0 || pressure > 1 {
		return fmt.Errorf("pressure %v out of range [0, 1]", pressure)
	}
	return c.press(device, x, y, engine.Press{Button: button, Pressure: pressure, HasPressure: true})
}

func (c *headlessCanvas) press(device string, x, y int, p engine.Press) error {
	if device == "" {
		return errors.New("empty device name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Press(session.DeviceID(device), x, y, p)
	c.metrics.IncrementGestures()
	return c.rasterErr()
}

func (c *headlessCanvas) Motion(device string, x, y int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.OnMotion(session.DeviceID(device), x, y)
	return c.rasterErr()
}

func (c *headlessCanvas) Release(device string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.OnRelease(session.DeviceID(device))
	return c.rasterErr()
}

func (c *headlessCanvas) SwitchColor(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 {
		c.engine.ClearSwitchColor()
		return nil
	}
	col, ok := switchColor(c.switchColors, index)
	if !ok {
		return fmt.Errorf("switch color %d out of range (%d configured)", index, len(c.switchColors))
	}
	c.engine.SetSwitchColor(col)
	return nil
}

func (c *headlessCanvas) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Clear()
	c.metrics.IncrementClears()
	return nil
}

func (c *headlessCanvas) Undo() (bool, error) {
	return c.step(c.engine.Undo)
}

func (c *headlessCanvas) Redo() (bool, error) {
	return c.step(c.engine.Redo)
}

func (c *headlessCanvas) step(fn func() (bool, error)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed, err := fn()
	if changed {
		c.metrics.IncrementUndoSteps()
	}
	return changed, err
}

// Snapshot copies the displayed surface and consumes the pending damage.
func (c *headlessCanvas) Snapshot() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src, ok := c.engine.Display().(*surface.SoftwareSurface)
	if !ok {
		return nil, errors.New("display surface is not a software surface")
	}
	img := src.Image()
	out := image.NewRGBA(img.Bounds())
	imagedraw.Draw(out, out.Bounds(), img, img.Bounds().Min, imagedraw.Src)
	c.damage.Take()
	return out, nil
}

func (c *headlessCanvas) reload(presets *paint.Presets, switchColors []color.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.SetPresets(presets)
	c.switchColors = slices.Clone(switchColors)
}

// rasterErr reports the first rasterizer failure of either surface.
func (c *headlessCanvas) rasterErr() error {
	if err := c.canvas.Err(); err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	if err := c.scratch.Err(); err != nil {
		return fmt.Errorf("scratch: %w", err)
	}
	return nil
}
