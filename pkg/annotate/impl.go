package annotate

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-annotate/internal/config"
)

// Headless canvas size when neither the options nor the configuration name
// one.
const (
	defaultHeadlessWidth  = 800
	defaultHeadlessHeight = 600
)

// overlayImpl is the private implementation of the Overlay interface.
type overlayImpl struct {
	// Configuration
	cfg          *config.Config
	opts         Options
	configSource string
	configPath   string // Set for disk configurations, which can be watched
	configLoader func() (*config.Config, error)

	logger  Logger
	metrics *Metrics

	// Components, set while running
	window  *gameRunner
	canvas  *headlessCanvas
	watcher *config.Watcher

	// State
	running   atomic.Bool
	startTime time.Time
	lastError atomic.Value // stores error

	// Handlers
	errorHandler ErrorHandler
	eventHandler EventHandler

	// Synchronization
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Verify interface implementation at compile time.
var _ Overlay = (*overlayImpl)(nil)

// Start runs the overlay in a background goroutine.
func (o *overlayImpl) Start() error {
	if err := o.begin(context.Background()); err != nil {
		return err
	}
	go o.loop()
	o.emitEvent(EventStarted, "Overlay started")
	return nil
}

// Run runs the overlay until ctx is cancelled or the overlay stops.
func (o *overlayImpl) Run(ctx context.Context) error {
	if err := o.begin(ctx); err != nil {
		return err
	}
	o.emitEvent(EventStarted, "Overlay started")
	o.loop()
	return o.runError()
}

// begin builds the components for one run and marks the overlay running.
func (o *overlayImpl) begin(parent context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running.Load() {
		return ErrAlreadyRunning
	}

	presets, err := o.cfg.Presets()
	if err != nil {
		return fmt.Errorf("tool presets: %w", err)
	}

	o.ctx, o.cancel = context.WithCancel(parent)
	o.window, o.canvas = nil, nil

	if o.opts.Headless {
		w, h := o.canvasSize(defaultHeadlessWidth, defaultHeadlessHeight)
		o.canvas = newHeadlessCanvas(w, h, presets, o.cfg, o.engineLogger(), o.metrics)
	} else {
		runner, err := newGameRunner(o, presets)
		if err != nil {
			o.cancel()
			return fmt.Errorf("failed to initialize: %w", err)
		}
		o.window = runner
	}

	if o.opts.WatchConfig && o.configPath != "" {
		w, err := config.NewWatcher(o.configPath, o.opts.WatchDebounce, o.onWatchedReload, o.notifyError)
		if err != nil {
			// The overlay works without hot reload.
			o.logger.Warn("config watcher unavailable", "path", o.configPath, "error", err)
		} else {
			o.watcher = w
			w.Start()
		}
	}

	o.done = make(chan struct{})
	o.running.Store(true)
	o.startTime = time.Now()
	o.metrics.IncrementStarts()
	o.metrics.SetRunning(true)
	o.logger.Info("overlay started", "source", o.configSource, "headless", o.opts.Headless)
	return nil
}

// loop blocks until the run ends.
func (o *overlayImpl) loop() {
	o.mu.RLock()
	ctx, window := o.ctx, o.window
	o.mu.RUnlock()

	if window == nil {
		<-ctx.Done()
	} else {
		window.run(o)
	}
	o.finish()
}

func (o *overlayImpl) finish() {
	o.mu.Lock()
	if o.watcher != nil {
		o.watcher.Stop()
		o.watcher = nil
	}
	if o.cancel != nil {
		o.cancel()
	}
	done := o.done
	o.mu.Unlock()

	o.running.Store(false)
	o.metrics.SetRunning(false)
	o.logger.Info("overlay stopped")
	o.emitEvent(EventStopped, "Overlay stopped")
	close(done)
}

// runError returns the error that ended the window loop, if any.
func (o *overlayImpl) runError() error {
	o.mu.RLock()
	window := o.window
	o.mu.RUnlock()
	if window == nil {
		return nil
	}
	return window.err
}

// Stop cancels the run and waits for it to finish.
func (o *overlayImpl) Stop() error {
	o.mu.Lock()
	if !o.running.Load() {
		o.mu.Unlock()
		return nil
	}
	if o.cancel != nil {
		o.cancel()
	}
	done := o.done
	o.mu.Unlock()

	timeout := o.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	select {
	case <-done:
		o.metrics.IncrementStops()
		return nil
	case <-time.After(timeout):
		err := fmt.Errorf("shutdown timeout after %v", timeout)
		o.notifyError(err)
		return err
	}
}

// ReloadConfig loads the configuration again and applies it in place.
func (o *overlayImpl) ReloadConfig() error {
	if !o.running.Load() {
		return ErrNotRunning
	}
	if o.configLoader == nil {
		return errors.New("no config loader available")
	}

	start := time.Now()
	cfg, err := o.configLoader()
	o.metrics.RecordReloadLatency(time.Since(start))
	if err != nil {
		wrappedErr := fmt.Errorf("config reload failed: %w", err)
		o.notifyError(wrappedErr)
		return wrappedErr
	}
	return o.applyConfig(cfg)
}

// onWatchedReload receives configurations parsed by the file watcher.
func (o *overlayImpl) onWatchedReload(cfg *config.Config) {
	config.ExpandEnvConfig(cfg)
	if err := o.applyConfig(cfg); err != nil {
		o.notifyError(fmt.Errorf("config reload failed: %w", err))
	}
}

// applyConfig swaps in cfg. Tools, bindings, switch colors and opacity take
// effect immediately; window size, hints and hotkeys on the next start.
func (o *overlayImpl) applyConfig(cfg *config.Config) error {
	presets, err := cfg.Presets()
	if err != nil {
		return fmt.Errorf("tool presets: %w", err)
	}

	o.mu.Lock()
	o.cfg = cfg
	window, canvas := o.window, o.canvas
	o.mu.Unlock()

	switch {
	case window != nil:
		window.reload(presets, cfg)
	case canvas != nil:
		canvas.reload(presets, cfg.SwitchColors)
	}

	o.metrics.IncrementConfigReloads()
	o.logger.Info("configuration reloaded", "tools", len(cfg.Tools), "bindings", len(cfg.Bindings))
	o.emitEvent(EventConfigReloaded, "Configuration reloaded in-place")
	return nil
}

// IsRunning returns true if the overlay is running.
func (o *overlayImpl) IsRunning() bool {
	return o.running.Load()
}

// Status returns a snapshot of the overlay state.
func (o *overlayImpl) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	tools := make([]string, 0, len(o.cfg.Tools))
	for _, t := range o.cfg.Tools {
		tools = append(tools, t.Name)
	}
	return Status{
		Running:      o.running.Load(),
		Headless:     o.opts.Headless,
		StartTime:    o.startTime,
		LastError:    o.getError(),
		ConfigSource: o.configSource,
		Tools:        tools,
	}
}

// Canvas returns the drawing handle of a running headless overlay.
func (o *overlayImpl) Canvas() (Canvas, error) {
	if !o.opts.Headless {
		return nil, ErrNotHeadless
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.running.Load() || o.canvas == nil {
		return nil, ErrNotRunning
	}
	return o.canvas, nil
}

// Metrics returns the metrics collector.
func (o *overlayImpl) Metrics() *Metrics {
	return o.metrics
}

// SetErrorHandler registers a callback for runtime errors.
func (o *overlayImpl) SetErrorHandler(handler ErrorHandler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errorHandler = handler
}

// SetEventHandler registers a callback for lifecycle events.
func (o *overlayImpl) SetEventHandler(handler EventHandler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.eventHandler = handler
}

// canvasSize resolves the canvas size from the options, then the
// configuration, then the fallback.
func (o *overlayImpl) canvasSize(fallbackW, fallbackH int) (int, int) {
	w, h := o.opts.Width, o.opts.Height
	if w <= 0 {
		w = o.cfg.Overlay.Width
	}
	if h <= 0 {
		h = o.cfg.Overlay.Height
	}
	if w <= 0 {
		w = fallbackW
	}
	if h <= 0 {
		h = fallbackH
	}
	return w, h
}

func (o *overlayImpl) engineLogger() *slog.Logger {
	return engineLogger(o.logger, o.opts.Debug || o.cfg.Overlay.Debug)
}

// switchColor returns colors[index], or false when index is out of range.
func switchColor(colors []color.RGBA, index int) (color.RGBA, bool) {
	if index < 0 || index >= len(colors) {
		return color.RGBA{}, false
	}
	return colors[index], true
}

// getError retrieves the last error.
func (o *overlayImpl) getError() error {
	if v := o.lastError.Load(); v != nil {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// notifyError stores an error and invokes the error handler if registered.
func (o *overlayImpl) notifyError(err error) {
	o.lastError.Store(err)
	o.metrics.IncrementErrors()
	o.logger.Error("overlay error", "error", err)

	o.mu.RLock()
	handler := o.errorHandler
	o.mu.RUnlock()

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("error handler panicked", "panic", r, "original_error", err)
				}
			}()
			handler(err)
		}()
	}

	o.emitEvent(EventError, err.Error())
}

// emitEvent sends an event to the event handler if configured.
func (o *overlayImpl) emitEvent(eventType EventType, message string) {
	o.metrics.IncrementEventsEmitted()

	o.mu.RLock()
	handler := o.eventHandler
	o.mu.RUnlock()

	if handler == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.mu.RLock()
				errHandler := o.errorHandler
				o.mu.RUnlock()
				if errHandler != nil {
					if err, ok := r.(error); ok {
						errHandler(fmt.Errorf("panic in event handler: %w", err))
					} else {
						errHandler(fmt.Errorf("panic in event handler: %v", r))
					}
				}
			}
		}()

		handler(Event{
			Type:      eventType,
			Timestamp: time.Now(),
			Message:   message,
		})
	}()
}
