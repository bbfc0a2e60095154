// Package render provides the Ebiten overlay window of go-annotate.
package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/opd-ai/go-annotate/internal/paint"
)

// WindowHints selects the window manager treatment of the overlay.
type WindowHints struct {
	// Undecorated removes the title bar and borders.
	Undecorated bool
	// Above keeps the overlay above other windows.
	Above bool
	// Sticky shows the overlay on every desktop.
	Sticky bool
	// SkipTaskbar hides the overlay from the taskbar.
	SkipTaskbar bool
	// SkipPager hides the overlay from the pager.
	SkipPager bool
}

// Config holds the overlay window options.
type Config struct {
	// Width and Height size the window and the canvas in pixels.
	Width  int
	Height int
	// Title is the window title.
	Title string
	// Opacity scales the alpha of the annotations, in [0, 1].
	Opacity float64
	// Hints are applied once the window is mapped.
	Hints WindowHints
	// Hotkey toggles painting. With shift it clears the canvas, with
	// control it toggles visibility and with alt it quits.
	Hotkey ebiten.Key
	// UndoKey undoes; with shift it redoes.
	UndoKey ebiten.Key
	// SwitchColors are selected by the digit keys 1 to 6; 0 returns to the
	// tool colors.
	SwitchColors []color.RGBA
	// UndoDepth is the number of undo snapshots; negative disables undo.
	UndoDepth int
	// Active starts the overlay with painting enabled. Otherwise pointer
	// input passes through to the windows below until the hotkey is pressed.
	Active bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	colors := make([]color.RGBA, paint.BasicColorCount)
	for i := range colors {
		colors[i] = paint.BasicColor(i).RGBA()
	}
	return Config{
		Width:   800,
		Height:  600,
		Title:   "annotate",
		Opacity: 0.75,
		Hints: WindowHints{
			Undecorated: true,
			Above:       true,
			Sticky:      true,
			SkipTaskbar: true,
			SkipPager:   true,
		},
		Hotkey:       ebiten.KeyF9,
		UndoKey:      ebiten.KeyF8,
		SwitchColors: colors,
	}
}

// Validate checks if the Config has valid values.
func (c Config) Validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("height must be positive, got %d", c.Height)
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %g", c.Opacity)
	}
	if c.Hotkey == c.UndoKey {
		return fmt.Errorf("hotkey and undo key are both %s", c.Hotkey)
	}
	return nil
}

// ParseKey parses a key name as Ebiten spells it, such as "F9" or "Insert".
func ParseKey(name string) (ebiten.Key, error) {
	var k ebiten.Key
	if err := k.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown key %q: %w", name, err)
	}
	return k, nil
}

// ScreenSize returns the size of the monitor the overlay opens on.
func ScreenSize() (int, int) {
	if m := ebiten.Monitor(); m != nil {
		if w, h := m.Size(); w > 0 && h > 0 {
			return w, h
		}
	}
	return 1920, 1080
}
