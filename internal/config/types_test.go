package config

import (
	"errors"
	"testing"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Overlay.Title != DefaultTitle {
		t.Errorf("expected title %q, got %q", DefaultTitle, cfg.Overlay.Title)
	}
	if cfg.Overlay.Opacity != DefaultOpacity {
		t.Errorf("expected opacity %v, got %v", DefaultOpacity, cfg.Overlay.Opacity)
	}
	if cfg.Overlay.Hotkey != DefaultHotkey || cfg.Overlay.UndoKey != DefaultUndoKey {
		t.Errorf("expected keys %s/%s, got %s/%s",
			DefaultHotkey, DefaultUndoKey, cfg.Overlay.Hotkey, cfg.Overlay.UndoKey)
	}
	for _, h := range []WindowHint{
		WindowHintUndecorated, WindowHintAbove, WindowHintSticky,
		WindowHintSkipTaskbar, WindowHintSkipPager,
	} {
		if !cfg.Overlay.HasHint(h) {
			t.Errorf("expected hint %s", h)
		}
	}
	if len(cfg.SwitchColors) != paint.BasicColorCount {
		t.Errorf("expected %d switch colors, got %d", paint.BasicColorCount, len(cfg.SwitchColors))
	}

	// Every call returns fresh slices.
	cfg.Tools[0].Name = "changed"
	if DefaultConfig().Tools[0].Name == "changed" {
		t.Error("DefaultConfig shares its tool slice")
	}
}

func TestToolConfigContext(t *testing.T) {
	tc := ToolConfig{
		Name:          "arrow",
		Type:          paint.Line,
		Color:         paint.Blue.RGBA(),
		Size:          4,
		MinSize:       2,
		MaxSize:       10,
		ArrowSize:     1.5,
		ArrowPosition: stroke.ArrowBoth,
	}
	ctx := tc.Context()

	if ctx.Name != "arrow" || ctx.Type != paint.Line || ctx.Width != 4 {
		t.Errorf("Context() = %+v", ctx)
	}
	if ctx.MinWidth != 2 || ctx.MaxWidth != 10 {
		t.Errorf("width range = [%d, %d], want [2, 10]", ctx.MinWidth, ctx.MaxWidth)
	}
	if ctx.ArrowSize != 1.5 || ctx.ArrowPosition != stroke.ArrowBoth {
		t.Errorf("arrows = %v/%v", ctx.ArrowSize, ctx.ArrowPosition)
	}
	if ctx.Color != paint.Blue.RGBA() {
		t.Errorf("Color = %v, want blue", ctx.Color)
	}
}

func TestBindingConfigBinding(t *testing.T) {
	tests := []struct {
		name string
		bc   BindingConfig
		want paint.Binding
	}{
		{"empty device is default", BindingConfig{Tool: "x"}, paint.Binding{Device: paint.DefaultDevice}},
		{"explicit", BindingConfig{Device: "mouse", Button: 2, Modifiers: paint.ModAlt},
			paint.Binding{Device: "mouse", Button: 2, Modifiers: paint.ModAlt}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bc.Binding(); got != tt.want {
				t.Errorf("Binding() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigPresets(t *testing.T) {
	cfg := DefaultConfig()
	presets, err := cfg.Presets()
	if err != nil {
		t.Fatalf("Presets failed: %v", err)
	}

	if got := presets.Fallback().Name; got != "red Pen" {
		t.Errorf("Fallback() = %q, want red Pen", got)
	}
	if got := presets.Select("mouse", 1, paint.ModShift).Name; got != "blue Pen" {
		t.Errorf("shift selects %q, want blue Pen", got)
	}
	if got := presets.Select("mouse", 3, 0).Name; got != "Eraser" {
		t.Errorf("button 3 selects %q, want Eraser", got)
	}
	if got := len(presets.Names()); got != len(cfg.Tools) {
		t.Errorf("Names() has %d tools, want %d", got, len(cfg.Tools))
	}
}

func TestConfigPresetsFallbackWithoutDefaultBinding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bindings = cfg.Bindings[1:]

	presets, err := cfg.Presets()
	if err != nil {
		t.Fatalf("Presets failed: %v", err)
	}
	if got := presets.Fallback().Name; got != cfg.Tools[0].Name {
		t.Errorf("Fallback() = %q, want first tool %q", got, cfg.Tools[0].Name)
	}
}

func TestConfigPresetsErrors(t *testing.T) {
	t.Run("no tools", func(t *testing.T) {
		cfg := Config{}
		if _, err := cfg.Presets(); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Bindings = append(cfg.Bindings, BindingConfig{Device: "touch", Tool: "laser"})
		_, err := cfg.Presets()
		if !errors.Is(err, ErrUnknownTool) {
			t.Errorf("Presets() error = %v, want ErrUnknownTool", err)
		}
	})

	t.Run("unknown default tool", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Bindings[0].Tool = "laser"
		_, err := cfg.Presets()
		if !errors.Is(err, ErrUnknownTool) {
			t.Errorf("Presets() error = %v, want ErrUnknownTool", err)
		}
	})
}

func TestConfigTool(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := cfg.Tool("Eraser"); !ok {
		t.Error("Tool(Eraser) not found")
	}
	if _, ok := cfg.Tool("laser"); ok {
		t.Error("Tool(laser) found")
	}
}

func TestWindowHintString(t *testing.T) {
	tests := []struct {
		hint     WindowHint
		expected string
	}{
		{WindowHintUndecorated, "undecorated"},
		{WindowHintAbove, "above"},
		{WindowHintSticky, "sticky"},
		{WindowHintSkipTaskbar, "skip_taskbar"},
		{WindowHintSkipPager, "skip_pager"},
		{WindowHint(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.hint.String(); got != tt.expected {
				t.Errorf("WindowHint(%d).String() = %q, want %q", tt.hint, got, tt.expected)
			}
		})
	}
}

func TestParseWindowHints(t *testing.T) {
	tests := []struct {
		input   string
		want    []WindowHint
		wantErr bool
	}{
		{"", nil, false},
		{"above", []WindowHint{WindowHintAbove}, false},
		{" Sticky , skip_pager,", []WindowHint{WindowHintSticky, WindowHintSkipPager}, false},
		{"above,floating", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseWindowHints(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseWindowHints(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseWindowHints(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseWindowHints(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
