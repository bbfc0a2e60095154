package config

import (
	"image/color"
	"strings"
	"testing"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

func TestValidationErrorError(t *testing.T) {
	ve := ValidationError{Field: "overlay.opacity", Message: "out of range"}
	if got, want := ve.Error(), "overlay.opacity: out of range"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationResult(t *testing.T) {
	vr := &ValidationResult{}
	if !vr.IsValid() || vr.Error() != nil {
		t.Fatal("empty result should be valid")
	}

	vr.AddWarning("a", "warn")
	if !vr.IsValid() {
		t.Error("warnings must not invalidate a result")
	}

	other := &ValidationResult{}
	other.AddError("b", "first")
	other.AddError("c", "second")
	vr.Merge(other)
	vr.Merge(nil)

	if vr.IsValid() {
		t.Error("expected invalid result after merge")
	}
	msg := vr.Error().Error()
	if !strings.Contains(msg, "b: first") || !strings.Contains(msg, "c: second") {
		t.Errorf("Error() = %q, want both messages", msg)
	}
	if len(vr.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(vr.Warnings))
	}
}

func TestValidateDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	result := NewValidator().Validate(&cfg)
	if !result.IsValid() {
		t.Errorf("default config invalid: %v", result.Error())
	}
	if len(result.Warnings) != 0 {
		t.Errorf("default config has warnings: %v", result.Warnings)
	}
}

func TestValidatorErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"negative width", func(c *Config) { c.Overlay.Width = -1 }, "overlay.width"},
		{"negative height", func(c *Config) { c.Overlay.Height = -1 }, "overlay.height"},
		{"opacity above one", func(c *Config) { c.Overlay.Opacity = 1.5 }, "overlay.opacity"},
		{"negative undo depth", func(c *Config) { c.Overlay.UndoDepth = -1 }, "overlay.undo_depth"},
		{"unknown hint", func(c *Config) { c.Overlay.Hints = []WindowHint{99} }, "overlay.hints"},
		{"empty hotkey", func(c *Config) { c.Overlay.Hotkey = " " }, "overlay.hotkey"},
		{"undo key equals hotkey", func(c *Config) { c.Overlay.UndoKey = c.Overlay.Hotkey }, "overlay.undo_key"},
		{"no tools", func(c *Config) { c.Tools = nil; c.Bindings = nil }, "tools"},
		{"missing tool name", func(c *Config) { c.Tools[0].Name = "" }, "tools[1]"},
		{"duplicate tool", func(c *Config) { c.Tools[1].Name = c.Tools[0].Name }, `tools["red Pen"]`},
		{"unknown type", func(c *Config) { c.Tools[0].Type = 42 }, `tools["red Pen"].type`},
		{"zero size", func(c *Config) { c.Tools[0].Size = 0 }, `tools["red Pen"].size`},
		{"negative minsize", func(c *Config) { c.Tools[0].MinSize = -1 }, `tools["red Pen"].minsize`},
		{"negative maxsize", func(c *Config) { c.Tools[0].MaxSize = -1 }, `tools["red Pen"].maxsize`},
		{"minsize above maxsize", func(c *Config) { c.Tools[0].MinSize = 5; c.Tools[0].MaxSize = 3 }, `tools["red Pen"].minsize`},
		{"negative arrowsize", func(c *Config) { c.Tools[0].ArrowSize = -1 }, `tools["red Pen"].arrowsize`},
		{"unknown arrow position", func(c *Config) { c.Tools[0].ArrowPosition = 7 }, `tools["red Pen"].arrowposition`},
		{"binding to unknown tool", func(c *Config) { c.Bindings[0].Tool = "nope" }, "bindings[1]"},
		{"negative button", func(c *Config) { c.Bindings[0].Button = -2 }, "bindings[1].button"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			result := NewValidator().Validate(&cfg)
			if result.IsValid() {
				t.Fatal("expected validation error")
			}
			if !hasField(result.Errors, tt.field) {
				t.Errorf("errors %v do not include field %q", result.Errors, tt.field)
			}
		})
	}
}

func TestValidatorWarnings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"huge width", func(c *Config) { c.Overlay.Width = 20000 }, "overlay.width"},
		{"invisible", func(c *Config) { c.Overlay.Opacity = 0 }, "overlay.opacity"},
		{"deep undo", func(c *Config) { c.Overlay.UndoDepth = 100 }, "overlay.undo_depth"},
		{"minsize above size", func(c *Config) { c.Tools[0].MinSize = 20 }, `tools["red Pen"].minsize`},
		{"arrows on rectangle", func(c *Config) {
			c.Tools[0].Type = paint.Rectangle
			c.Tools[0].ArrowSize = 1
			c.Tools[0].ArrowPosition = stroke.ArrowEnd
		}, `tools["red Pen"].arrowsize`},
		{"arrows on eraser", func(c *Config) {
			c.Tools[4].ArrowSize = 1
			c.Tools[4].ArrowPosition = stroke.ArrowStart
		}, `tools["Eraser"].arrowsize`},
		{"transparent pen", func(c *Config) { c.Tools[0].Color = color.RGBA{} }, `tools["red Pen"].color`},
		{"duplicate binding", func(c *Config) { c.Bindings = append(c.Bindings, c.Bindings[0]) }, "bindings[6]"},
		{"too many switch colors", func(c *Config) {
			c.SwitchColors = append(c.SwitchColors, color.RGBA{A: 255})
		}, "switch_colors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			result := NewValidator().Validate(&cfg)
			if !result.IsValid() {
				t.Fatalf("unexpected errors: %v", result.Errors)
			}
			if !hasField(result.Warnings, tt.field) {
				t.Errorf("warnings %v do not include field %q", result.Warnings, tt.field)
			}

			strict := NewValidator().WithStrictMode(true).Validate(&cfg)
			if strict.IsValid() || len(strict.Warnings) != 0 {
				t.Errorf("strict mode kept warnings: %+v", strict)
			}
		})
	}
}

func TestValidateConfigNil(t *testing.T) {
	if err := ValidateConfig(nil); err == nil {
		t.Error("ValidateConfig(nil) should fail")
	}
	if err := ValidateConfigStrict(nil); err == nil {
		t.Error("ValidateConfigStrict(nil) should fail")
	}
}

func TestValidateConfigStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Overlay.Opacity = 0
	if err := ValidateConfig(&cfg); err != nil {
		t.Errorf("ValidateConfig failed: %v", err)
	}
	if err := ValidateConfigStrict(&cfg); err == nil {
		t.Error("ValidateConfigStrict should reject warnings")
	}
}

func hasField(list []ValidationError, field string) bool {
	for _, e := range list {
		if e.Field == field {
			return true
		}
	}
	return false
}
