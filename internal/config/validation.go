// Package config provides configuration parsing and validation for go-annotate.
// This file implements validation of the overlay, tool and binding settings.
package config

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues (e.g., arrows on a rectangle tool).
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Merge combines another ValidationResult into this one.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

// Validator checks a Config for values the overlay cannot use.
type Validator struct {
	// strictMode turns warnings into errors.
	strictMode bool
}

// NewValidator creates a new Validator with default settings.
func NewValidator() *Validator {
	return &Validator{}
}

// WithStrictMode enables strict validation where warnings are errors.
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// Validate performs comprehensive validation of a Config.
func (v *Validator) Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	v.validateOverlay(&cfg.Overlay, result)
	v.validateTools(cfg.Tools, result)
	v.validateBindings(cfg, result)
	v.validateSwitchColors(cfg, result)

	if v.strictMode {
		result.Errors = append(result.Errors, result.Warnings...)
		result.Warnings = nil
	}
	return result
}

// validateOverlay validates OverlayConfig settings.
func (v *Validator) validateOverlay(oc *OverlayConfig, result *ValidationResult) {
	if oc.Width < 0 {
		result.AddError("overlay.width", fmt.Sprintf("must be non-negative, got %d", oc.Width))
	}
	if oc.Height < 0 {
		result.AddError("overlay.height", fmt.Sprintf("must be non-negative, got %d", oc.Height))
	}

	const maxDimension = 16384
	if oc.Width > maxDimension {
		result.AddWarning("overlay.width", fmt.Sprintf("unusually large value %d", oc.Width))
	}
	if oc.Height > maxDimension {
		result.AddWarning("overlay.height", fmt.Sprintf("unusually large value %d", oc.Height))
	}

	if oc.Opacity < 0 || oc.Opacity > 1 {
		result.AddError("overlay.opacity", fmt.Sprintf("must be between 0 and 1, got %g", oc.Opacity))
	} else if oc.Opacity == 0 {
		result.AddWarning("overlay.opacity", "annotations will be invisible")
	}

	if oc.UndoDepth < 0 {
		result.AddError("overlay.undo_depth", fmt.Sprintf("must be non-negative, got %d", oc.UndoDepth))
	}
	if oc.UndoDepth > 64 {
		result.AddWarning("overlay.undo_depth",
			fmt.Sprintf("%d full-screen snapshots use a lot of memory", oc.UndoDepth))
	}

	for i, hint := range oc.Hints {
		if hint > WindowHintSkipPager {
			result.AddError("overlay.hints", fmt.Sprintf("unknown hint at index %d: %d", i, hint))
		}
	}

	if strings.TrimSpace(oc.Hotkey) == "" {
		result.AddError("overlay.hotkey", "must not be empty")
	}
	if oc.UndoKey != "" && oc.UndoKey == oc.Hotkey {
		result.AddError("overlay.undo_key", "must differ from the hotkey")
	}
}

// validateTools validates the tool presets.
func (v *Validator) validateTools(tools []ToolConfig, result *ValidationResult) {
	if len(tools) == 0 {
		result.AddError("tools", "at least one tool is required")
		return
	}

	seen := make(map[string]bool, len(tools))
	for i, t := range tools {
		field := fmt.Sprintf("tools[%d]", i+1)
		if t.Name == "" {
			result.AddError(field, "missing name")
		} else {
			field = fmt.Sprintf("tools[%q]", t.Name)
			if seen[t.Name] {
				result.AddError(field, "duplicate tool name")
			}
			seen[t.Name] = true
		}

		if t.Type < paint.Pen || t.Type > paint.Rectangle {
			result.AddError(field+".type", fmt.Sprintf("unknown tool type: %d", t.Type))
		}
		if t.Size < 1 {
			result.AddError(field+".size", fmt.Sprintf("must be positive, got %d", t.Size))
		}
		if t.MinSize < 0 {
			result.AddError(field+".minsize", fmt.Sprintf("must be non-negative, got %d", t.MinSize))
		}
		if t.MaxSize < 0 {
			result.AddError(field+".maxsize", fmt.Sprintf("must be non-negative, got %d", t.MaxSize))
		}
		if t.MaxSize > 0 && t.MinSize > t.MaxSize {
			result.AddError(field+".minsize",
				fmt.Sprintf("minsize %d exceeds maxsize %d", t.MinSize, t.MaxSize))
		}
		if t.MinSize > t.Size {
			result.AddWarning(field+".minsize",
				fmt.Sprintf("minsize %d exceeds size %d", t.MinSize, t.Size))
		}

		if t.ArrowSize < 0 {
			result.AddError(field+".arrowsize", fmt.Sprintf("must be non-negative, got %g", t.ArrowSize))
		}
		if t.ArrowPosition > stroke.ArrowBoth {
			result.AddError(field+".arrowposition", fmt.Sprintf("unknown position: %d", t.ArrowPosition))
		}
		if t.ArrowSize > 0 && t.ArrowPosition != stroke.ArrowNone {
			switch t.Type {
			case paint.Rectangle, paint.Ellipse:
				result.AddWarning(field+".arrowsize", "arrowheads on a closed shape")
			case paint.Eraser:
				result.AddWarning(field+".arrowsize", "arrowheads on an eraser")
			}
		}

		if t.Color.A == 0 && t.Type != paint.Eraser {
			result.AddWarning(field+".color", "fully transparent color will be invisible")
		}
	}
}

// validateBindings checks that every binding names a defined tool.
func (v *Validator) validateBindings(cfg *Config, result *ValidationResult) {
	seen := make(map[paint.Binding]bool, len(cfg.Bindings))
	for i, b := range cfg.Bindings {
		field := fmt.Sprintf("bindings[%d]", i+1)
		if _, ok := cfg.Tool(b.Tool); !ok {
			result.AddError(field, fmt.Sprintf("%v %q", ErrUnknownTool, b.Tool))
		}
		if b.Button < 0 {
			result.AddError(field+".button", fmt.Sprintf("must be non-negative, got %d", b.Button))
		}
		key := b.Binding()
		if seen[key] {
			result.AddWarning(field, fmt.Sprintf("%s is bound more than once; the last binding wins", key))
		}
		seen[key] = true
	}
}

// validateSwitchColors checks the switch-color palette.
func (v *Validator) validateSwitchColors(cfg *Config, result *ValidationResult) {
	if len(cfg.SwitchColors) > paint.BasicColorCount {
		result.AddWarning("switch_colors",
			fmt.Sprintf("only the first %d colors have hotkeys", paint.BasicColorCount))
	}
}

// ValidateConfig is a convenience function to validate a Config with default settings.
// Returns nil if the config is valid, or an error describing validation failures.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	return NewValidator().Validate(cfg).Error()
}

// ValidateConfigStrict validates a Config with strict mode enabled.
// Warnings are treated as errors.
func ValidateConfigStrict(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	return NewValidator().WithStrictMode(true).Validate(cfg).Error()
}
