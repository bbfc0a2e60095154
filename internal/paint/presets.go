package paint

import (
	"fmt"
	"sort"
	"strings"
)

// Modifiers is the keyboard modifier state held while pressing.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta
)

// ParseModifiers parses a comma separated modifier list such as "shift,ctrl".
func ParseModifiers(s string) (Modifiers, error) {
	var m Modifiers
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "shift":
			m |= ModShift
		case "ctrl", "control":
			m |= ModControl
		case "alt":
			m |= ModAlt
		case "meta", "super":
			m |= ModMeta
		default:
			return 0, fmt.Errorf("unknown modifier %q", part)
		}
	}
	return m, nil
}

// DefaultDevice is the binding that applies to every device.
const DefaultDevice = "default"

// Binding selects a preset for a device, optionally only for one button or
// modifier combination. Button 0 matches any button.
type Binding struct {
	Device    string
	Button    int
	Modifiers Modifiers
}

// Presets is the set of configured tools and which device uses which.
type Presets struct {
	tools    map[string]*Context
	bindings map[Binding]string
	fallback *Context
}

// NewPresets returns a preset set that falls back to the given tool when no
// binding matches.
func NewPresets(fallback *Context) *Presets {
	p := &Presets{
		tools:    make(map[string]*Context),
		bindings: make(map[Binding]string),
		fallback: fallback,
	}
	if fallback != nil {
		p.tools[fallback.Name] = fallback
	}
	return p
}

// Add registers a tool, replacing any tool of the same name.
func (p *Presets) Add(c *Context) {
	p.tools[c.Name] = c
}

// Tool returns the tool with the given name.
func (p *Presets) Tool(name string) (*Context, bool) {
	c, ok := p.tools[name]
	return c, ok
}

// Names returns the sorted tool names.
func (p *Presets) Names() []string {
	names := make([]string, 0, len(p.tools))
	for n := range p.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bind maps a binding to a tool name. The tool must already be registered.
func (p *Presets) Bind(b Binding, tool string) error {
	if _, ok := p.tools[tool]; !ok {
		return fmt.Errorf("binding %s: unknown tool %q", b, tool)
	}
	p.bindings[b] = tool
	return nil
}

// Fallback returns the tool used when nothing is bound.
func (p *Presets) Fallback() *Context {
	return p.fallback
}

// Select picks the tool for a press. The most specific binding wins: the
// device before its class ("touch" for "touch:3") before "default", and
// within each an exact button and modifier match before looser ones.
func (p *Presets) Select(device string, button int, mods Modifiers) *Context {
	for _, dev := range deviceCandidates(device) {
		for _, b := range []Binding{
			{dev, button, mods},
			{dev, 0, mods},
			{dev, button, 0},
			{dev, 0, 0},
		} {
			if name, ok := p.bindings[b]; ok {
				return p.tools[name]
			}
		}
	}
	return p.fallback
}

func deviceCandidates(device string) []string {
	out := []string{device}
	if class, _, ok := strings.Cut(device, ":"); ok && class != "" {
		out = append(out, class)
	}
	if device != DefaultDevice {
		out = append(out, DefaultDevice)
	}
	return out
}

// String formats a binding the way tool lists print it, e.g. default[3,shift].
func (b Binding) String() string {
	var parts []string
	if b.Button != 0 {
		parts = append(parts, fmt.Sprintf("%d", b.Button))
	}
	for _, m := range []struct {
		bit  Modifiers
		name string
	}{{ModShift, "shift"}, {ModControl, "ctrl"}, {ModAlt, "alt"}, {ModMeta, "meta"}} {
		if b.Modifiers&m.bit != 0 {
			parts = append(parts, m.name)
		}
	}
	if len(parts) == 0 {
		return b.Device
	}
	return b.Device + "[" + strings.Join(parts, ",") + "]"
}
