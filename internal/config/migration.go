// Package config provides configuration parsing and migration for go-annotate.
// This file converts classic tool definition files to the Lua format.
package config

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

// Migrator converts a Config into a Lua configuration script.
type Migrator struct {
	// includeComments adds explanatory comments to the output.
	includeComments bool
	// preserveDefaults includes settings even when they match defaults.
	preserveDefaults bool
}

// MigratorOption is a functional option for configuring a Migrator.
type MigratorOption func(*Migrator)

// WithComments enables adding explanatory comments to the Lua output.
func WithComments(include bool) MigratorOption {
	return func(m *Migrator) {
		m.includeComments = include
	}
}

// WithDefaults includes settings that match default values in the output.
func WithDefaults(preserve bool) MigratorOption {
	return func(m *Migrator) {
		m.preserveDefaults = preserve
	}
}

// NewMigrator creates a new Migrator with the given options.
func NewMigrator(opts ...MigratorOption) *Migrator {
	m := &Migrator{
		includeComments:  true,
		preserveDefaults: false,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MigrateToLua converts a Config to a Lua configuration script.
func (m *Migrator) MigrateToLua(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	var buf bytes.Buffer
	if m.includeComments {
		buf.WriteString("-- go-annotate Lua configuration\n")
		buf.WriteString("-- Converted from a classic tool definition file\n\n")
	}

	buf.WriteString("annotate.config = {\n")
	m.writeOverlay(&buf, &cfg.Overlay)
	buf.WriteString("}\n\n")

	m.writeTools(&buf, cfg.Tools)
	m.writeBindings(&buf, cfg.Bindings)
	m.writeSwitchColors(&buf, cfg.SwitchColors)

	return buf.Bytes(), nil
}

// writeOverlay writes the annotate.config table contents.
func (m *Migrator) writeOverlay(buf *bytes.Buffer, oc *OverlayConfig) {
	d := DefaultOverlayConfig()

	if m.preserveDefaults || oc.Title != d.Title {
		writeField(buf, 1, "title", luaString(oc.Title))
	}
	if m.preserveDefaults || oc.Width != d.Width {
		writeField(buf, 1, "width", fmt.Sprint(oc.Width))
	}
	if m.preserveDefaults || oc.Height != d.Height {
		writeField(buf, 1, "height", fmt.Sprint(oc.Height))
	}
	if m.preserveDefaults || oc.Opacity != d.Opacity {
		writeField(buf, 1, "opacity", luaNumber(oc.Opacity))
	}
	if m.preserveDefaults || oc.Debug != d.Debug {
		writeField(buf, 1, "debug", fmt.Sprint(oc.Debug))
	}
	if m.preserveDefaults || oc.UndoDepth != d.UndoDepth {
		writeField(buf, 1, "undo_depth", fmt.Sprint(oc.UndoDepth))
	}
	if m.preserveDefaults || hintList(oc.Hints) != hintList(d.Hints) {
		writeField(buf, 1, "hints", luaString(hintList(oc.Hints)))
	}
	if m.preserveDefaults || oc.Hotkey != d.Hotkey {
		writeField(buf, 1, "hotkey", luaString(oc.Hotkey))
	}
	if m.preserveDefaults || oc.UndoKey != d.UndoKey {
		writeField(buf, 1, "undo_key", luaString(oc.UndoKey))
	}
}

func (m *Migrator) writeTools(buf *bytes.Buffer, tools []ToolConfig) {
	if m.includeComments {
		buf.WriteString("-- Tool presets\n")
	}
	buf.WriteString("annotate.tools = {\n")
	for _, t := range tools {
		buf.WriteString("    {\n")
		writeField(buf, 2, "name", luaString(t.Name))
		writeField(buf, 2, "type", luaString(t.Type.String()))
		writeField(buf, 2, "color", luaString(colorString(t.Color)))
		writeField(buf, 2, "size", fmt.Sprint(t.Size))
		if m.preserveDefaults || t.MinSize != 1 {
			writeField(buf, 2, "minsize", fmt.Sprint(t.MinSize))
		}
		if t.MaxSize != 0 {
			writeField(buf, 2, "maxsize", fmt.Sprint(t.MaxSize))
		}
		if t.ArrowSize != 0 {
			writeField(buf, 2, "arrowsize", luaNumber(t.ArrowSize))
		}
		if t.ArrowPosition != stroke.ArrowNone {
			writeField(buf, 2, "arrowposition", luaString(t.ArrowPosition.String()))
		}
		buf.WriteString("    },\n")
	}
	buf.WriteString("}\n\n")
}

func (m *Migrator) writeBindings(buf *bytes.Buffer, bindings []BindingConfig) {
	if m.includeComments {
		buf.WriteString("-- Device bindings\n")
	}
	buf.WriteString("annotate.bindings = {\n")
	for _, b := range bindings {
		parts := []string{"device = " + luaString(b.Binding().Device)}
		if b.Button != 0 {
			parts = append(parts, fmt.Sprintf("button = %d", b.Button))
		}
		if mods := modifierList(b.Modifiers); mods != "" {
			parts = append(parts, "modifiers = "+luaString(mods))
		}
		parts = append(parts, "tool = "+luaString(b.Tool))
		fmt.Fprintf(buf, "    { %s },\n", strings.Join(parts, ", "))
	}
	buf.WriteString("}\n")
}

func (m *Migrator) writeSwitchColors(buf *bytes.Buffer, colors []color.RGBA) {
	if !m.preserveDefaults && sameColors(colors, DefaultSwitchColors()) {
		return
	}
	names := make([]string, len(colors))
	for i, c := range colors {
		names[i] = luaString(colorString(c))
	}
	fmt.Fprintf(buf, "\nannotate.switch_colors = { %s }\n", strings.Join(names, ", "))
}

func writeField(buf *bytes.Buffer, depth int, name, value string) {
	fmt.Fprintf(buf, "%s%s = %s,\n", strings.Repeat("    ", depth), name, value)
}

// luaString quotes s as a single-quoted Lua string.
func luaString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

func luaNumber(f float64) string {
	if f == float64(int(f)) {
		return fmt.Sprintf("%.1f", f)
	}
	return fmt.Sprintf("%g", f)
}

func hintList(hints []WindowHint) string {
	names := make([]string, len(hints))
	for i, h := range hints {
		names[i] = h.String()
	}
	return strings.Join(names, ",")
}

func modifierList(mods paint.Modifiers) string {
	var names []string
	for _, m := range []struct {
		bit  paint.Modifiers
		name string
	}{{paint.ModShift, "shift"}, {paint.ModControl, "ctrl"}, {paint.ModAlt, "alt"}, {paint.ModMeta, "meta"}} {
		if mods&m.bit != 0 {
			names = append(names, m.name)
		}
	}
	return strings.Join(names, ",")
}

func sameColors(a, b []color.RGBA) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// reverseColorNames provides a deterministic mapping from RGBA colors to names.
var reverseColorNames = map[color.RGBA]string{
	{R: 255, G: 255, B: 255, A: 255}: "white",
	{R: 0, G: 0, B: 0, A: 255}:       "black",
	{R: 255, G: 0, B: 0, A: 255}:     "red",
	{R: 0, G: 255, B: 0, A: 255}:     "green",
	{R: 0, G: 0, B: 255, A: 255}:     "blue",
	{R: 255, G: 255, B: 0, A: 255}:   "yellow",
	{R: 0, G: 255, B: 255, A: 255}:   "cyan",
	{R: 255, G: 0, B: 255, A: 255}:   "magenta",
	{R: 128, G: 128, B: 128, A: 255}: "grey", // prefer "grey" over "gray"
	{R: 255, G: 165, B: 0, A: 255}:   "orange",
}

// colorString returns a color name when one exists, else #RRGGBB or
// #RRGGBBAA in straight (non-premultiplied) alpha.
func colorString(c color.RGBA) string {
	if name, ok := reverseColorNames[c]; ok {
		return name
	}
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// MigrateLegacyFile reads a classic tool definition file and converts it to
// Lua. This is a convenience function that combines parsing and migration.
func MigrateLegacyFile(path string, opts ...MigratorOption) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return MigrateLegacyContent(content, opts...)
}

// MigrateLegacyContent converts classic tool definitions to Lua.
func MigrateLegacyContent(content []byte, opts ...MigratorOption) ([]byte, error) {
	cfg, err := NewLegacyParser().Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse legacy config: %w", err)
	}
	return NewMigrator(opts...).MigrateToLua(cfg)
}
