// Package config provides configuration parsing for go-annotate.
// This file implements the Lua configuration parser.

package config

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"sync"

	"github.com/arnodel/golua/lib"
	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

// Resource limits for executing a configuration script.
const (
	luaCPULimit    = 10_000_000
	luaMemoryLimit = 50 * 1024 * 1024 // 50 MB
)

// LuaConfigParser parses Lua configuration files.
// It uses the Golua runtime to execute Lua code and extract the tools,
// bindings and overlay settings from the annotate global table.
type LuaConfigParser struct {
	runtime *rt.Runtime
	cleanup func()
	mu      sync.Mutex
}

// NewLuaConfigParser creates a new LuaConfigParser with a fresh Lua runtime.
func NewLuaConfigParser() (*LuaConfigParser, error) {
	return NewLuaConfigParserWithOutput(io.Discard)
}

// NewLuaConfigParserWithOutput creates a LuaConfigParser with custom output
// for the script's print calls.
func NewLuaConfigParserWithOutput(stdout io.Writer) (*LuaConfigParser, error) {
	if stdout == nil {
		stdout = os.Stdout
	}

	runtime := rt.New(stdout)
	cleanup := lib.LoadAll(runtime)

	return &LuaConfigParser{
		runtime: runtime,
		cleanup: cleanup,
	}, nil
}

// Parse executes a Lua configuration and extracts the annotate tables.
// Tables the script leaves unset keep their defaults.
func (p *LuaConfigParser) Parse(content []byte) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.initAnnotateGlobal()

	closure, err := p.runtime.CompileAndLoadLuaChunk(
		"config",
		content,
		rt.TableValue(p.runtime.GlobalEnv()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Lua configuration: %w", err)
	}

	ctx := rt.RuntimeContextDef{
		HardLimits: rt.RuntimeResources{
			Cpu:    luaCPULimit,
			Memory: luaMemoryLimit,
		},
	}
	p.runtime.PushContext(ctx)
	defer p.runtime.PopContext()

	thread := p.runtime.MainThread()
	if _, err := rt.Call1(thread, rt.FunctionValue(closure)); err != nil {
		return nil, fmt.Errorf("failed to execute Lua configuration: %w", err)
	}

	return p.extractConfig()
}

// initAnnotateGlobal installs an annotate table with an empty config table,
// so scripts may assign fields instead of whole tables.
func (p *LuaConfigParser) initAnnotateGlobal() {
	annotate := rt.NewTable()
	annotate.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	p.runtime.GlobalEnv().Set(rt.StringValue("annotate"), rt.TableValue(annotate))
}

// extractConfig reads the configuration from the annotate global table.
func (p *LuaConfigParser) extractConfig() (*Config, error) {
	cfg := DefaultConfig()

	annotateVal := p.runtime.GlobalEnv().Get(rt.StringValue("annotate"))
	if annotateVal == rt.NilValue {
		return &cfg, nil
	}
	annotate, ok := annotateVal.TryTable()
	if !ok {
		return nil, fmt.Errorf("annotate is not a table")
	}

	if table, ok := annotate.Get(rt.StringValue("config")).TryTable(); ok {
		if err := extractOverlay(&cfg.Overlay, table); err != nil {
			return nil, err
		}
	}

	if table, ok := annotate.Get(rt.StringValue("tools")).TryTable(); ok {
		tools, err := extractTools(table)
		if err != nil {
			return nil, err
		}
		cfg.Tools = tools
	}

	if table, ok := annotate.Get(rt.StringValue("bindings")).TryTable(); ok {
		bindings, err := extractBindings(table)
		if err != nil {
			return nil, err
		}
		cfg.Bindings = bindings
	}

	if table, ok := annotate.Get(rt.StringValue("switch_colors")).TryTable(); ok {
		colors, err := extractColorList(table)
		if err != nil {
			return nil, err
		}
		cfg.SwitchColors = colors
	}

	return &cfg, nil
}

// extractOverlay extracts the annotate.config table.
func extractOverlay(oc *OverlayConfig, table *rt.Table) error {
	if val := getTableString(table, "title"); val != nil {
		oc.Title = *val
	}
	if val := getTableInt(table, "width"); val != nil {
		oc.Width = *val
	}
	if val := getTableInt(table, "height"); val != nil {
		oc.Height = *val
	}
	if val := getTableFloat(table, "opacity"); val != nil {
		oc.Opacity = *val
	}
	if val := getTableBool(table, "debug"); val != nil {
		oc.Debug = *val
	}
	if val := getTableInt(table, "undo_depth"); val != nil {
		oc.UndoDepth = *val
	}
	if val := getTableString(table, "hotkey"); val != nil {
		oc.Hotkey = *val
	}
	if val := getTableString(table, "undo_key"); val != nil {
		oc.UndoKey = *val
	}
	if val := getTableString(table, "hints"); val != nil {
		hints, err := parseWindowHints(*val)
		if err != nil {
			return fmt.Errorf("invalid hints: %w", err)
		}
		oc.Hints = hints
	}
	return nil
}

// extractTools reads the annotate.tools array.
func extractTools(table *rt.Table) ([]ToolConfig, error) {
	var tools []ToolConfig
	err := forEachEntry(table, func(i int, entry *rt.Table) error {
		tool, err := extractTool(entry)
		if err != nil {
			return fmt.Errorf("annotate.tools[%d]: %w", i, err)
		}
		tools = append(tools, tool)
		return nil
	})
	return tools, err
}

func extractTool(table *rt.Table) (ToolConfig, error) {
	tool := ToolConfig{
		Type:    paint.Pen,
		Color:   paint.Red.RGBA(),
		Size:    DefaultPenSize,
		MinSize: 1,
	}

	name := getTableString(table, "name")
	if name == nil || *name == "" {
		return tool, fmt.Errorf("missing name")
	}
	tool.Name = *name

	if val := getTableString(table, "type"); val != nil {
		t, err := paint.ParseType(*val)
		if err != nil {
			return tool, err
		}
		tool.Type = t
		if t == paint.Eraser {
			tool.Size = DefaultEraserSize
		}
	}
	if val := getTableString(table, "color"); val != nil {
		c, err := paint.ParseColor(*val)
		if err != nil {
			return tool, fmt.Errorf("invalid color: %w", err)
		}
		tool.Color = c
	}
	if val := getTableInt(table, "size"); val != nil {
		tool.Size = *val
	}
	if val := getTableInt(table, "minsize"); val != nil {
		tool.MinSize = *val
	}
	if val := getTableInt(table, "maxsize"); val != nil {
		tool.MaxSize = *val
	}
	if val := getTableFloat(table, "arrowsize"); val != nil {
		tool.ArrowSize = *val
		tool.ArrowPosition = stroke.ArrowEnd
	}
	if val := getTableString(table, "arrowposition"); val != nil {
		pos, err := stroke.ParseArrowPosition(*val)
		if err != nil {
			return tool, err
		}
		tool.ArrowPosition = pos
	}
	return tool, nil
}

// extractBindings reads the annotate.bindings array.
func extractBindings(table *rt.Table) ([]BindingConfig, error) {
	var bindings []BindingConfig
	err := forEachEntry(table, func(i int, entry *rt.Table) error {
		b := BindingConfig{Device: paint.DefaultDevice}
		if val := getTableString(entry, "device"); val != nil {
			b.Device = *val
		}
		if val := getTableInt(entry, "button"); val != nil {
			b.Button = *val
		}
		for _, key := range []string{"modifier", "modifiers"} {
			if val := getTableString(entry, key); val != nil {
				mods, err := paint.ParseModifiers(*val)
				if err != nil {
					return fmt.Errorf("annotate.bindings[%d]: %w", i, err)
				}
				b.Modifiers |= mods
			}
		}
		tool := getTableString(entry, "tool")
		if tool == nil {
			return fmt.Errorf("annotate.bindings[%d]: missing tool", i)
		}
		b.Tool = *tool
		bindings = append(bindings, b)
		return nil
	})
	return bindings, err
}

// extractColorList reads an array of color strings.
func extractColorList(table *rt.Table) ([]color.RGBA, error) {
	var colors []color.RGBA
	for i := int64(1); ; i++ {
		val := table.Get(rt.IntValue(i))
		if val == rt.NilValue {
			return colors, nil
		}
		s, ok := val.TryString()
		if !ok {
			return nil, fmt.Errorf("annotate.switch_colors[%d]: not a string", i)
		}
		c, err := paint.ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("annotate.switch_colors[%d]: %w", i, err)
		}
		colors = append(colors, c)
	}
}

// forEachEntry calls fn for the tables at indexes 1, 2, ... of an array,
// stopping at the first nil.
func forEachEntry(table *rt.Table, fn func(i int, entry *rt.Table) error) error {
	for i := int64(1); ; i++ {
		val := table.Get(rt.IntValue(i))
		if val == rt.NilValue {
			return nil
		}
		entry, ok := val.TryTable()
		if !ok {
			return fmt.Errorf("entry %d is not a table", i)
		}
		if err := fn(int(i), entry); err != nil {
			return err
		}
	}
}

// Close releases resources associated with the parser's Lua runtime.
func (p *LuaConfigParser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
	return nil
}

// getTableBool retrieves a boolean value from a Lua table.
// Returns nil if the key doesn't exist or is not a boolean.
func getTableBool(table *rt.Table, key string) *bool {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if b, ok := val.TryBool(); ok {
		return &b
	}

	// Handle string "true"/"false" for compatibility
	if s, ok := val.TryString(); ok {
		b := parseBool(s)
		return &b
	}

	return nil
}

// getTableString retrieves a string value from a Lua table.
// Returns nil if the key doesn't exist or is not a string.
func getTableString(table *rt.Table, key string) *string {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if s, ok := val.TryString(); ok {
		return &s
	}

	return nil
}

// getTableFloat retrieves a float64 value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableFloat(table *rt.Table, key string) *float64 {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryFloat(); ok {
		return &n
	}

	if n, ok := val.TryInt(); ok {
		f := float64(n)
		return &f
	}

	return nil
}

// getTableInt retrieves an int value from a Lua table.
// Returns nil if the key doesn't exist or is not a number.
func getTableInt(table *rt.Table, key string) *int {
	val := table.Get(rt.StringValue(key))
	if val == rt.NilValue {
		return nil
	}

	if n, ok := val.TryInt(); ok {
		i := int(n)
		return &i
	}

	// Try float conversion (truncate)
	if f, ok := val.TryFloat(); ok {
		i := int(f)
		return &i
	}

	return nil
}
