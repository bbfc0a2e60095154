package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-annotate/internal/draw"
	"github.com/opd-ai/go-annotate/internal/engine"
	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/session"
	"github.com/opd-ai/go-annotate/internal/surface"
)

// ErrGameTerminated is returned when the game loop is terminated via context
// cancellation or the quit hotkey.
var ErrGameTerminated = errors.New("game terminated")

// ErrorHandler is a function type for handling errors during game updates.
type ErrorHandler func(err error)

// DefaultErrorHandler writes errors to stderr.
func DefaultErrorHandler(err error) {
	fmt.Fprintf(os.Stderr, "update error: %v\n", err)
}

// setPassthrough lets pointer input reach the windows below the overlay.
var setPassthrough = ebiten.SetWindowMousePassthrough

// Reload carries the parts of a new configuration that apply to a running
// overlay. Nil fields keep their current value.
type Reload struct {
	Presets      *paint.Presets
	SwitchColors []color.RGBA
	Opacity      *float64
}

// Options configures a Game.
type Options struct {
	// Logger receives overlay and drawing debug output. If nil, nothing is
	// logged.
	Logger *slog.Logger
	// Input delivers keyboard and pointer input. If nil, Ebiten is polled.
	Input InputSource
	// ErrorHandler receives errors that do not stop the overlay. If nil,
	// DefaultErrorHandler is used.
	ErrorHandler ErrorHandler
}

// Game implements ebiten.Game as a transparent annotation overlay.
type Game struct {
	config  Config
	engine  *engine.Engine
	canvas  *surface.EbitenSurface
	scratch *surface.EbitenSurface
	damage  *draw.DamageTracker
	input   InputSource
	logger  *slog.Logger
	onError ErrorHandler

	metrics *FrameMetrics
	stats   *EventStats
	opPool  *DrawOptionsPool

	painting     bool
	visible      bool
	hintsApplied bool
	applyHints   func(WindowHints) error
	down         map[session.DeviceID]struct{}
	outsideW     int
	outsideH     int

	mu      sync.Mutex
	pending *Reload
	running bool
	ctx     context.Context
}

// NewGame creates an overlay drawing with presets.
func NewGame(config Config, presets *paint.Presets, opts Options) (*Game, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid overlay config: %w", err)
	}
	if presets == nil {
		return nil, errors.New("no tool presets")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	onError := opts.ErrorHandler
	if onError == nil {
		onError = DefaultErrorHandler
	}
	input := opts.Input
	if input == nil {
		input = NewEbitenInput(config.Hotkey, config.UndoKey)
	}

	g := &Game{
		config:     config,
		canvas:     surface.NewEbitenSurface(config.Width, config.Height),
		scratch:    surface.NewEbitenSurface(config.Width, config.Height),
		damage:     draw.NewDamageTracker(config.Width, config.Height),
		input:      input,
		logger:     logger,
		onError:    onError,
		metrics:    NewFrameMetrics(time.Second),
		stats:      NewEventStats(),
		opPool:     NewDrawOptionsPool(),
		painting:   config.Active,
		visible:    true,
		applyHints: ApplyWindowHints,
		down:       make(map[session.DeviceID]struct{}),
	}
	g.engine = engine.New(
		engine.Canvas{Persistent: g.canvas, Scratch: g.scratch},
		presets,
		engine.Options{
			Invalidator: g.damage,
			Logger:      logger,
			UndoDepth:   config.UndoDepth,
			Allocate: func() surface.Surface {
				return surface.NewEbitenSurface(config.Width, config.Height)
			},
		},
	)
	g.engine.Observe(g.stats.Record)
	g.damage.InvalidateAll()
	return g, nil
}

// Engine returns the drawing engine of the overlay.
func (g *Game) Engine() *engine.Engine {
	return g.engine
}

// Metrics returns the tick timing of the overlay.
func (g *Game) Metrics() *FrameMetrics {
	return g.metrics
}

// Stats returns the drawing event counters.
func (g *Game) Stats() *EventStats {
	return g.stats
}

// Painting reports whether pointer input draws.
func (g *Game) Painting() bool {
	return g.painting
}

// Visible reports whether the annotations are shown.
func (g *Game) Visible() bool {
	return g.visible
}

// SetContext sets a context for the game loop. When the context is cancelled,
// the game loop will terminate gracefully.
func (g *Game) SetContext(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ctx = ctx
}

// QueueReload schedules r to be applied on the next tick. It may be called
// from any goroutine; a later reload replaces one not yet applied.
func (g *Game) QueueReload(r Reload) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &r
}

// Update implements ebiten.Game.Update.
func (g *Game) Update() error {
	start := time.Now()
	defer func() { g.metrics.RecordFrame(time.Since(start)) }()

	g.mu.Lock()
	ctx, pending := g.ctx, g.pending
	g.pending = nil
	g.mu.Unlock()

	if ctx != nil {
		select {
		case <-ctx.Done():
			return ErrGameTerminated
		default:
		}
	}

	if pending != nil {
		g.applyReload(*pending)
	}

	if !g.hintsApplied {
		g.hintsApplied = true
		if g.applyHints != nil {
			if err := g.applyHints(g.config.Hints); err != nil {
				g.logger.Warn("window hints not applied", "error", err)
			}
		}
		setPassthrough(!g.painting)
	}

	frame := g.input.Poll()
	for _, ev := range frame.Actions {
		if err := g.HandleAction(ev); err != nil {
			return err
		}
	}
	for _, ev := range frame.Pointers {
		g.HandlePointer(ev)
	}

	if modified, painted := g.engine.TakeFlags(); painted {
		g.logger.Debug("tick painted", "canvas_modified", modified)
	}
	return nil
}

func (g *Game) applyReload(r Reload) {
	if r.Presets != nil {
		g.engine.SetPresets(r.Presets)
	}
	if r.SwitchColors != nil {
		g.config.SwitchColors = r.SwitchColors
	}
	if r.Opacity != nil {
		g.config.Opacity = *r.Opacity
		g.damage.InvalidateAll()
	}
	g.logger.Info("configuration reloaded")
}

// HandleAction runs a keyboard action. It returns ErrGameTerminated on quit.
func (g *Game) HandleAction(ev KeyEvent) error {
	g.logger.Debug("action", "action", ev.Action.String())
	switch ev.Action {
	case ActionTogglePainting:
		g.setPainting(!g.painting)
	case ActionClear:
		g.engine.Clear()
	case ActionToggleVisibility:
		g.visible = !g.visible
		g.damage.InvalidateAll()
	case ActionQuit:
		return ErrGameTerminated
	case ActionUndo:
		g.undoStep(g.engine.Undo)
	case ActionRedo:
		g.undoStep(g.engine.Redo)
	case ActionSwitchColor:
		if ev.Color < 0 || ev.Color >= len(g.config.SwitchColors) {
			return nil
		}
		g.engine.SetSwitchColor(g.config.SwitchColors[ev.Color])
	case ActionToolColor:
		g.engine.ClearSwitchColor()
	}
	return nil
}

func (g *Game) undoStep(step func() (bool, error)) {
	if _, err := step(); err != nil && !errors.Is(err, engine.ErrUndoDisabled) {
		g.onError(err)
	}
}

func (g *Game) setPainting(on bool) {
	if on == g.painting {
		return
	}
	if !on {
		for dev := range g.down {
			g.engine.OnRelease(dev)
		}
		clear(g.down)
	}
	g.painting = on
	setPassthrough(!on)
}

// HandlePointer feeds a pointer event to the engine while painting is on.
func (g *Game) HandlePointer(ev PointerEvent) {
	if !g.painting {
		return
	}
	switch ev.Kind {
	case PointerPress:
		g.down[ev.Device] = struct{}{}
		g.engine.Press(ev.Device, ev.X, ev.Y, engine.Press{
			Button:      ev.Button,
			Modifiers:   ev.Modifiers,
			Pressure:    ev.Pressure,
			HasPressure: ev.HasPressure,
		})
	case PointerMotion:
		if ev.HasPressure {
			g.engine.OnMotionPressure(ev.Device, ev.X, ev.Y, ev.Pressure)
		} else {
			g.engine.OnMotion(ev.Device, ev.X, ev.Y)
		}
	case PointerRelease:
		delete(g.down, ev.Device)
		g.engine.OnRelease(ev.Device)
	}
}

// Draw implements ebiten.Game.Draw. The screen is not cleared between
// frames, so only the damaged area is recomposited.
func (g *Game) Draw(screen *ebiten.Image) {
	r, ok := g.damage.Take()
	if !ok {
		return
	}
	dst := screen.SubImage(r).(*ebiten.Image)
	dst.Clear()
	if !g.visible {
		return
	}

	src, ok := g.engine.Display().(*surface.EbitenSurface)
	if !ok {
		return
	}
	op := g.opPool.Get()
	defer g.opPool.Put(op)
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	op.ColorScale.ScaleAlpha(float32(g.config.Opacity))
	screen.DrawImage(src.Image().SubImage(r).(*ebiten.Image), op)
}

// Layout implements ebiten.Game.Layout. The logical screen always matches
// the canvas; a change of the window size repaints everything.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outsideW || outsideHeight != g.outsideH {
		g.outsideW, g.outsideH = outsideWidth, outsideHeight
		g.damage.InvalidateAll()
	}
	return g.config.Width, g.config.Height
}

// Config returns the overlay configuration.
func (g *Game) Config() Config {
	return g.config
}

// Damage returns the area waiting to be repainted without consuming it.
func (g *Game) Damage() (image.Rectangle, bool) {
	if !g.damage.Pending() {
		return image.Rectangle{}, false
	}
	r, ok := g.damage.Take()
	if ok {
		g.damage.InvalidateRect(r)
	}
	return r, ok
}

// Run starts the Ebiten game loop.
// This function blocks until the window is closed or the overlay quits.
func (g *Game) Run() error {
	ebiten.SetWindowSize(g.config.Width, g.config.Height)
	ebiten.SetWindowTitle(g.config.Title)
	ebiten.SetWindowDecorated(!g.config.Hints.Undecorated)
	ebiten.SetWindowFloating(g.config.Hints.Above)
	ebiten.SetWindowPosition(0, 0)
	ebiten.SetScreenClearedEveryFrame(false)

	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	err := ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{ScreenTransparent: true})

	g.mu.Lock()
	g.running = false
	g.mu.Unlock()

	if errors.Is(err, ErrGameTerminated) {
		return nil
	}
	return err
}

// IsRunning returns whether the game loop is currently running.
func (g *Game) IsRunning() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}
