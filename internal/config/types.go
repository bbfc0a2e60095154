// Package config provides configuration parsing for go-annotate.
// This file defines the configuration data structures.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

// ErrUnknownTool is returned when a binding names a tool that is not defined.
var ErrUnknownTool = errors.New("unknown tool")

// Config represents the complete overlay configuration.
type Config struct {
	// Overlay contains window and behaviour settings.
	Overlay OverlayConfig
	// Tools lists the tool presets in definition order.
	Tools []ToolConfig
	// Bindings maps devices, buttons and modifiers to tools.
	Bindings []BindingConfig
	// SwitchColors are the colors chosen by the switch-color hotkeys.
	SwitchColors []color.RGBA
}

// OverlayConfig contains settings for the overlay window.
type OverlayConfig struct {
	// Title is the window title.
	Title string
	// Width and Height size the window. Zero means the screen size.
	Width  int
	Height int
	// Opacity of the annotations when composited, in [0, 1].
	Opacity float64
	// Debug enables debug logging of every drawing call.
	Debug bool
	// UndoDepth is the number of undo snapshots kept.
	UndoDepth int
	// Hints are window manager hints applied after the window is mapped.
	Hints []WindowHint
	// Hotkey toggles painting; with modifiers it clears, hides and quits.
	Hotkey string
	// UndoKey undoes; with shift it redoes.
	UndoKey string
}

// ToolConfig defines one tool preset.
type ToolConfig struct {
	Name          string
	Type          paint.Type
	Color         color.RGBA
	Size          int
	MinSize       int
	MaxSize       int
	ArrowSize     float64
	ArrowPosition stroke.ArrowPosition
}

// Context builds the paint preset described by the tool.
func (tc ToolConfig) Context() *paint.Context {
	ctx := paint.NewContext(tc.Name, tc.Type, tc.Size, tc.Color)
	if tc.MinSize > 0 {
		ctx.MinWidth = tc.MinSize
	}
	ctx.MaxWidth = tc.MaxSize
	ctx.ArrowSize = tc.ArrowSize
	ctx.ArrowPosition = tc.ArrowPosition
	return ctx
}

// BindingConfig selects a tool for a device, optionally restricted to one
// button and modifier combination.
type BindingConfig struct {
	Device    string
	Button    int
	Modifiers paint.Modifiers
	Tool      string
}

// Binding returns the paint binding key.
func (bc BindingConfig) Binding() paint.Binding {
	device := bc.Device
	if device == "" {
		device = paint.DefaultDevice
	}
	return paint.Binding{Device: device, Button: bc.Button, Modifiers: bc.Modifiers}
}

// Tool returns the tool with the given name.
func (c *Config) Tool(name string) (ToolConfig, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolConfig{}, false
}

// Presets builds the tool set. The tool bound to the plain default device is
// the fallback; without such a binding the first tool is.
func (c *Config) Presets() (*paint.Presets, error) {
	if len(c.Tools) == 0 {
		return nil, errors.New("no tools defined")
	}

	contexts := make(map[string]*paint.Context, len(c.Tools))
	for _, t := range c.Tools {
		contexts[t.Name] = t.Context()
	}

	fallback := contexts[c.Tools[0].Name]
	for _, b := range c.Bindings {
		if b.Binding() == (paint.Binding{Device: paint.DefaultDevice}) {
			ctx, ok := contexts[b.Tool]
			if !ok {
				return nil, fmt.Errorf("binding %s: %w %q", b.Binding(), ErrUnknownTool, b.Tool)
			}
			fallback = ctx
		}
	}

	presets := paint.NewPresets(fallback)
	for _, t := range c.Tools {
		presets.Add(contexts[t.Name])
	}
	for _, b := range c.Bindings {
		if _, ok := contexts[b.Tool]; !ok {
			return nil, fmt.Errorf("binding %s: %w %q", b.Binding(), ErrUnknownTool, b.Tool)
		}
		if err := presets.Bind(b.Binding(), b.Tool); err != nil {
			return nil, err
		}
	}
	return presets, nil
}

// Validate checks the configuration for errors.
// Returns nil if the configuration is valid.
func (c *Config) Validate() error {
	return NewValidator().Validate(c).Error()
}

// WindowHint represents a window manager hint.
type WindowHint int

const (
	// WindowHintUndecorated removes window decorations.
	WindowHintUndecorated WindowHint = iota
	// WindowHintAbove keeps the window above others.
	WindowHintAbove
	// WindowHintSticky makes the window visible on all desktops.
	WindowHintSticky
	// WindowHintSkipTaskbar hides the window from the taskbar.
	WindowHintSkipTaskbar
	// WindowHintSkipPager hides the window from the pager.
	WindowHintSkipPager
)

// String returns the string representation of a WindowHint.
func (wh WindowHint) String() string {
	switch wh {
	case WindowHintUndecorated:
		return "undecorated"
	case WindowHintAbove:
		return "above"
	case WindowHintSticky:
		return "sticky"
	case WindowHintSkipTaskbar:
		return "skip_taskbar"
	case WindowHintSkipPager:
		return "skip_pager"
	default:
		return "unknown"
	}
}

// ParseWindowHint parses a string into a WindowHint.
func ParseWindowHint(s string) (WindowHint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "undecorated":
		return WindowHintUndecorated, nil
	case "above":
		return WindowHintAbove, nil
	case "sticky":
		return WindowHintSticky, nil
	case "skip_taskbar":
		return WindowHintSkipTaskbar, nil
	case "skip_pager":
		return WindowHintSkipPager, nil
	default:
		return WindowHintUndecorated, fmt.Errorf("unknown window hint: %s", s)
	}
}

// parseWindowHints parses a comma-separated list of window hints.
func parseWindowHints(s string) ([]WindowHint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	hints := make([]WindowHint, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		hint, err := ParseWindowHint(part)
		if err != nil {
			return nil, err
		}
		hints = append(hints, hint)
	}
	return hints, nil
}

// HasHint reports whether the overlay requests hint h.
func (oc OverlayConfig) HasHint(h WindowHint) bool {
	for _, have := range oc.Hints {
		if have == h {
			return true
		}
	}
	return false
}
