package config

import (
	"image/color"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
	"github.com/opd-ai/go-annotate/internal/undo"
)

// Default values for configuration options.
const (
	// DefaultTitle is the overlay window title.
	DefaultTitle = "annotate"
	// DefaultOpacity is the opacity of the annotations.
	DefaultOpacity = 0.75
	// DefaultPenSize is the width of the default pen in pixels.
	DefaultPenSize = 7
	// DefaultEraserSize is the width of the default eraser in pixels.
	DefaultEraserSize = 75
	// DefaultHotkey toggles painting.
	DefaultHotkey = "F9"
	// DefaultUndoKey undoes the last gesture.
	DefaultUndoKey = "F8"
)

// DefaultSwitchColors returns the palette of the switch-color hotkeys.
func DefaultSwitchColors() []color.RGBA {
	colors := make([]color.RGBA, paint.BasicColorCount)
	for i := range colors {
		colors[i] = paint.BasicColor(i).RGBA()
	}
	return colors
}

// DefaultTools returns the tools used when no configuration file exists.
func DefaultTools() []ToolConfig {
	return []ToolConfig{
		{Name: "red Pen", Type: paint.Pen, Color: paint.Red.RGBA(), Size: DefaultPenSize, MinSize: 1},
		{Name: "blue Pen", Type: paint.Pen, Color: paint.Blue.RGBA(), Size: DefaultPenSize, MinSize: 1},
		{Name: "yellow Pen", Type: paint.Pen, Color: paint.Yellow.RGBA(), Size: DefaultPenSize, MinSize: 1},
		{Name: "green Marker", Type: paint.Pen, Color: paint.Green.RGBA(), Size: 6, MinSize: 1, ArrowSize: 1, ArrowPosition: stroke.ArrowEnd},
		{Name: "Eraser", Type: paint.Eraser, Color: paint.Black.RGBA(), Size: DefaultEraserSize, MinSize: 1},
	}
}

// DefaultBindings returns the bindings used when no configuration file
// exists.
func DefaultBindings() []BindingConfig {
	return []BindingConfig{
		{Device: paint.DefaultDevice, Tool: "red Pen"},
		{Device: paint.DefaultDevice, Modifiers: paint.ModShift, Tool: "blue Pen"},
		{Device: paint.DefaultDevice, Modifiers: paint.ModControl, Tool: "yellow Pen"},
		{Device: paint.DefaultDevice, Button: 2, Tool: "green Marker"},
		{Device: paint.DefaultDevice, Button: 3, Tool: "Eraser"},
	}
}

// DefaultOverlayConfig returns an OverlayConfig with default values.
func DefaultOverlayConfig() OverlayConfig {
	return OverlayConfig{
		Title:     DefaultTitle,
		Opacity:   DefaultOpacity,
		UndoDepth: undo.DefaultDepth,
		Hints: []WindowHint{
			WindowHintUndecorated,
			WindowHintAbove,
			WindowHintSticky,
			WindowHintSkipTaskbar,
			WindowHintSkipPager,
		},
		Hotkey:  DefaultHotkey,
		UndoKey: DefaultUndoKey,
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Overlay:      DefaultOverlayConfig(),
		Tools:        DefaultTools(),
		Bindings:     DefaultBindings(),
		SwitchColors: DefaultSwitchColors(),
	}
}
