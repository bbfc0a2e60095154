//go:build !noebiten

package annotate

import (
	"fmt"

	"github.com/opd-ai/go-annotate/internal/config"
	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/render"
)

// gameRunner owns the Ebiten overlay window of one run.
type gameRunner struct {
	game *render.Game
	err  error
}

// newGameRunner creates the overlay window for o. It is called with o.mu
// held.
func newGameRunner(o *overlayImpl, presets *paint.Presets) (*gameRunner, error) {
	rc, err := windowConfig(o.cfg, o.opts, render.ScreenSize)
	if err != nil {
		return nil, err
	}

	game, err := render.NewGame(rc, presets, render.Options{
		Logger:       o.engineLogger(),
		ErrorHandler: o.notifyError,
	})
	if err != nil {
		return nil, err
	}
	game.SetContext(o.ctx)
	return &gameRunner{game: game}, nil
}

// windowConfig builds the overlay window options from the configuration.
// screen supplies the size when neither opts nor cfg set one.
func windowConfig(cfg *config.Config, opts Options, screen func() (int, int)) (render.Config, error) {
	rc := render.DefaultConfig()

	rc.Width, rc.Height = opts.Width, opts.Height
	if rc.Width <= 0 {
		rc.Width = cfg.Overlay.Width
	}
	if rc.Height <= 0 {
		rc.Height = cfg.Overlay.Height
	}
	if rc.Width <= 0 || rc.Height <= 0 {
		sw, sh := screen()
		if rc.Width <= 0 {
			rc.Width = sw
		}
		if rc.Height <= 0 {
			rc.Height = sh
		}
	}

	switch {
	case opts.WindowTitle != "":
		rc.Title = opts.WindowTitle
	case cfg.Overlay.Title != "":
		rc.Title = cfg.Overlay.Title
	}

	rc.Opacity = cfg.Overlay.Opacity
	rc.UndoDepth = cfg.Overlay.UndoDepth
	rc.Active = opts.Active
	rc.Hints = render.WindowHints{
		Undecorated: cfg.Overlay.HasHint(config.WindowHintUndecorated),
		Above:       cfg.Overlay.HasHint(config.WindowHintAbove),
		Sticky:      cfg.Overlay.HasHint(config.WindowHintSticky),
		SkipTaskbar: cfg.Overlay.HasHint(config.WindowHintSkipTaskbar),
		SkipPager:   cfg.Overlay.HasHint(config.WindowHintSkipPager),
	}
	if len(cfg.SwitchColors) > 0 {
		rc.SwitchColors = cfg.SwitchColors
	}

	if cfg.Overlay.Hotkey != "" {
		k, err := render.ParseKey(cfg.Overlay.Hotkey)
		if err != nil {
			return rc, fmt.Errorf("hotkey: %w", err)
		}
		rc.Hotkey = k
	}
	if cfg.Overlay.UndoKey != "" {
		k, err := render.ParseKey(cfg.Overlay.UndoKey)
		if err != nil {
			return rc, fmt.Errorf("undo key: %w", err)
		}
		rc.UndoKey = k
	}
	return rc, nil
}

// run blocks until the window closes, the quit hotkey is pressed or the
// overlay context is cancelled.
func (gr *gameRunner) run(o *overlayImpl) {
	if err := gr.game.Run(); err != nil {
		gr.err = fmt.Errorf("render loop error: %w", err)
		o.notifyError(gr.err)
	}
}

// reload hands the live parts of cfg to the game's next Update.
func (gr *gameRunner) reload(presets *paint.Presets, cfg *config.Config) {
	opacity := cfg.Overlay.Opacity
	r := render.Reload{Presets: presets, Opacity: &opacity}
	if len(cfg.SwitchColors) > 0 {
		r.SwitchColors = cfg.SwitchColors
	}
	gr.game.QueueReload(r)
}

// compositorHealth is degraded when the overlay cannot be transparent.
func (gr *gameRunner) compositorHealth() ComponentHealth {
	status := render.DetectCompositor()
	if warning := render.TransparencyWarning(status); warning != "" {
		return ComponentHealth{HealthDegraded, warning}
	}
	return ComponentHealth{HealthOK, "Compositor " + status.String()}
}
