package annotate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"

	"github.com/opd-ai/go-annotate/internal/config"
)

// Configuration format constants for use with NewFromReader.
const (
	// FormatLegacy is the line-oriented tool list format.
	FormatLegacy = "legacy"
	// FormatLua is the Lua configuration format.
	FormatLua = "lua"
)

var (
	// ErrAlreadyRunning is returned by Start and Run on a running overlay.
	ErrAlreadyRunning = errors.New("overlay already running")
	// ErrNotRunning is returned by operations that need a running overlay.
	ErrNotRunning = errors.New("overlay not running")
	// ErrNotHeadless is returned by Canvas for overlays with a window, whose
	// input comes from the window system.
	ErrNotHeadless = errors.New("overlay has a window")
)

// Overlay is an annotation overlay with lifecycle control.
// It is safe for concurrent use from multiple goroutines.
type Overlay interface {
	// Start runs the overlay in the background and returns immediately.
	Start() error

	// Run runs the overlay on the calling goroutine until ctx is cancelled,
	// Stop is called, the window is closed or the quit hotkey is pressed.
	// Windowed overlays should be run from the main goroutine.
	Run(ctx context.Context) error

	// Stop shuts the overlay down and waits for it to finish.
	// Safe to call multiple times; subsequent calls are no-ops.
	Stop() error

	// ReloadConfig reloads tools, bindings and colors from the original
	// source while the overlay keeps running. On error the previous
	// configuration stays active.
	ReloadConfig() error

	// IsRunning reports whether the overlay is running.
	IsRunning() bool

	// Status returns a snapshot of the overlay state.
	Status() Status

	// Health reports the overlay health, including whether a compositor
	// makes the window transparent.
	Health() HealthCheck

	// Canvas returns the drawing handle of a running headless overlay.
	Canvas() (Canvas, error)

	// SetErrorHandler registers a callback for runtime errors.
	// Panics in the handler are recovered.
	SetErrorHandler(handler ErrorHandler)

	// SetEventHandler registers a callback for lifecycle events.
	SetEventHandler(handler EventHandler)

	// Metrics returns the metrics collector for this overlay.
	Metrics() *Metrics
}

// Canvas feeds pointer input to a headless overlay and reads back the
// result. Device names select tools like the configured bindings do:
// "mouse", "stylus", "touch:3" and so on.
type Canvas interface {
	// Press starts a gesture of device at (x, y) with button.
	Press(device string, x, y, button int) error
	// PressPressure is Press for devices that report pressure in [0, 1].
	PressPressure(device string, x, y, button int, pressure float64) error
	// Motion moves the gesture of device to (x, y).
	Motion(device string, x, y int) error
	// Release ends the gesture of device.
	Release(device string) error
	// SwitchColor makes every tool draw in the switch color at index,
	// or in its own color again for a negative index.
	SwitchColor(index int) error
	// Clear erases the canvas.
	Clear() error
	// Undo and Redo step through the snapshot ring and report whether the
	// canvas changed.
	Undo() (bool, error)
	Redo() (bool, error)
	// Snapshot returns a copy of what the overlay displays, shape previews
	// included.
	Snapshot() (image.Image, error)
}

// New creates an overlay from a configuration file on disk, in Lua or
// legacy format. A missing file yields the default configuration.
//
// Example:
//
//	o, err := annotate.New(config.DefaultPath(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := o.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
func New(configPath string, opts *Options) (Overlay, error) {
	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return finishConfig(cfg)
	}
	o, err := newOverlay(configPath, load, opts)
	if err != nil {
		return nil, err
	}
	o.configPath = configPath
	return o, nil
}

// NewFromFS creates an overlay from a configuration file in fsys, such as
// an embed.FS.
func NewFromFS(fsys fs.FS, configPath string, opts *Options) (Overlay, error) {
	return newOverlay("embedded:"+configPath, func() (*config.Config, error) {
		return parseWith(func(p *config.Parser) (*config.Config, error) {
			return p.ParseFromFS(fsys, configPath)
		})
	}, opts)
}

// NewFromReader creates an overlay from configuration content in format.
//
// Example:
//
//	cfg := strings.NewReader(`annotate.tools = { { name = "pen", type = "pen", color = "blue" } }`)
//	o, err := annotate.NewFromReader(cfg, annotate.FormatLua, &annotate.Options{Headless: true})
func NewFromReader(r io.Reader, format string, opts *Options) (Overlay, error) {
	if format != FormatLegacy && format != FormatLua {
		return nil, fmt.Errorf("invalid format: %s (expected '%s' or '%s')", format, FormatLua, FormatLegacy)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return newOverlay("reader", func() (*config.Config, error) {
		return parseWith(func(p *config.Parser) (*config.Config, error) {
			return p.ParseReader(bytes.NewReader(content), format)
		})
	}, opts)
}

func newOverlay(source string, load func() (*config.Config, error), opts *Options) (*overlayImpl, error) {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}

	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, err := cfg.Presets(); err != nil {
		return nil, fmt.Errorf("tool presets: %w", err)
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger()
	}

	return &overlayImpl{
		cfg:          cfg,
		opts:         *opts,
		configSource: source,
		configLoader: load,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

func parseWith(parse func(*config.Parser) (*config.Config, error)) (*config.Config, error) {
	p, err := config.NewParser()
	if err != nil {
		return nil, fmt.Errorf("parser init: %w", err)
	}
	defer p.Close()

	cfg, err := parse(p)
	if err != nil {
		return nil, err
	}
	return finishConfig(cfg)
}

// finishConfig expands environment references and validates cfg.
func finishConfig(cfg *config.Config) (*config.Config, error) {
	config.ExpandEnvConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
