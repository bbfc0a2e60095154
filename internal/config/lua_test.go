package config

import (
	"image/color"
	"strings"
	"testing"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

func TestNewLuaConfigParser(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	if p == nil {
		t.Error("NewLuaConfigParser returned nil")
	}
}

func TestLuaConfigParserParseBasic(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	content := `
annotate.config = {
    title = 'slides',
    width = 1280,
    height = 720,
    opacity = 0.5,
    debug = true,
    undo_depth = 8,
    hints = 'undecorated,above',
    hotkey = 'F10',
    undo_key = 'F11',
}

annotate.tools = {
    { name = 'red Pen', type = 'pen', color = 'red', size = 5 },
    { name = 'Box', type = 'rectangle', color = '#00ff00', size = 3, maxsize = 9 },
    { name = 'Arrow', type = 'line', color = 'blue', arrowsize = 2, arrowposition = 'both' },
}

annotate.bindings = {
    { device = 'default', tool = 'red Pen' },
    { device = 'mouse', button = 3, modifiers = 'shift,ctrl', tool = 'Box' },
}
`
	cfg, err := p.Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	oc := cfg.Overlay
	if oc.Title != "slides" {
		t.Errorf("Title = %q, want %q", oc.Title, "slides")
	}
	if oc.Width != 1280 || oc.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", oc.Width, oc.Height)
	}
	if oc.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want 0.5", oc.Opacity)
	}
	if !oc.Debug {
		t.Error("expected Debug to be true")
	}
	if oc.UndoDepth != 8 {
		t.Errorf("UndoDepth = %d, want 8", oc.UndoDepth)
	}
	if len(oc.Hints) != 2 || !oc.HasHint(WindowHintUndecorated) || !oc.HasHint(WindowHintAbove) {
		t.Errorf("Hints = %v, want [undecorated above]", oc.Hints)
	}
	if oc.Hotkey != "F10" || oc.UndoKey != "F11" {
		t.Errorf("keys = %q/%q, want F10/F11", oc.Hotkey, oc.UndoKey)
	}

	if len(cfg.Tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(cfg.Tools))
	}
	pen := cfg.Tools[0]
	if pen.Name != "red Pen" || pen.Type != paint.Pen || pen.Size != 5 || pen.MinSize != 1 {
		t.Errorf("tool[0] = %+v", pen)
	}
	box := cfg.Tools[1]
	if box.Type != paint.Rectangle || box.MaxSize != 9 {
		t.Errorf("tool[1] = %+v", box)
	}
	if want := (color.RGBA{G: 255, A: 255}); box.Color != want {
		t.Errorf("tool[1].Color = %v, want %v", box.Color, want)
	}
	arrow := cfg.Tools[2]
	if arrow.ArrowSize != 2 || arrow.ArrowPosition != stroke.ArrowBoth {
		t.Errorf("tool[2] arrows = %v/%v, want 2/both", arrow.ArrowSize, arrow.ArrowPosition)
	}
	if arrow.Size != DefaultPenSize {
		t.Errorf("tool[2].Size = %d, want default %d", arrow.Size, DefaultPenSize)
	}

	if len(cfg.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(cfg.Bindings))
	}
	b := cfg.Bindings[1]
	if b.Device != "mouse" || b.Button != 3 || b.Modifiers != paint.ModShift|paint.ModControl || b.Tool != "Box" {
		t.Errorf("binding[1] = %+v", b)
	}
}

func TestLuaConfigParserFieldAssignment(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	// annotate.config exists before the script runs.
	cfg, err := p.Parse([]byte(`annotate.config.opacity = 1
annotate.config.title = 'assigned'`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Overlay.Opacity != 1 || cfg.Overlay.Title != "assigned" {
		t.Errorf("Overlay = %+v", cfg.Overlay)
	}
	if len(cfg.Tools) != len(DefaultTools()) {
		t.Errorf("tools were replaced: got %d", len(cfg.Tools))
	}
}

func TestLuaConfigParserToolDefaults(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	cfg, err := p.Parse([]byte(`annotate.tools = {
    { name = 'plain' },
    { name = 'rubber', type = 'ERASER' },
    { name = 'marker', arrowsize = 1.5 },
}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		idx  int
		typ  paint.Type
		size int
		pos  stroke.ArrowPosition
	}{
		{0, paint.Pen, DefaultPenSize, stroke.ArrowNone},
		{1, paint.Eraser, DefaultEraserSize, stroke.ArrowNone},
		{2, paint.Pen, DefaultPenSize, stroke.ArrowEnd},
	}
	for _, tt := range tests {
		tool := cfg.Tools[tt.idx]
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Type != tt.typ {
				t.Errorf("Type = %v, want %v", tool.Type, tt.typ)
			}
			if tool.Size != tt.size {
				t.Errorf("Size = %d, want %d", tool.Size, tt.size)
			}
			if tool.ArrowPosition != tt.pos {
				t.Errorf("ArrowPosition = %v, want %v", tool.ArrowPosition, tt.pos)
			}
			if tool.Color != paint.Red.RGBA() {
				t.Errorf("Color = %v, want red", tool.Color)
			}
		})
	}
}

func TestLuaConfigParserSwitchColors(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	cfg, err := p.Parse([]byte(`annotate.switch_colors = { 'orange', '#102030' }`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []color.RGBA{{R: 255, G: 165, A: 255}, {R: 0x10, G: 0x20, B: 0x30, A: 255}}
	if !sameColors(cfg.SwitchColors, want) {
		t.Errorf("SwitchColors = %v, want %v", cfg.SwitchColors, want)
	}
}

func TestLuaConfigParserEmptyConfig(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	cfg, err := p.Parse([]byte(`-- nothing here`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.Overlay.Title != def.Overlay.Title || cfg.Overlay.Opacity != def.Overlay.Opacity {
		t.Errorf("Overlay = %+v, want defaults", cfg.Overlay)
	}
	if len(cfg.Bindings) != len(def.Bindings) {
		t.Errorf("expected %d default bindings, got %d", len(def.Bindings), len(cfg.Bindings))
	}
}

func TestLuaConfigParserNoAnnotateTable(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	if _, err := p.Parse([]byte(`annotate = nil`)); err != nil {
		t.Errorf("Parse failed: %v", err)
	}
	if _, err := p.Parse([]byte(`annotate = 42`)); err == nil {
		t.Error("expected error when annotate is not a table")
	}
}

func TestLuaConfigParserErrorHandling(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"syntax error", `annotate.config = {`, "compile"},
		{"runtime error", `error('boom')`, "execute"},
		{"missing name", `annotate.tools = { { type = 'pen' } }`, "missing name"},
		{"bad type", `annotate.tools = { { name = 'x', type = 'brush' } }`, "unknown tool type"},
		{"bad color", `annotate.tools = { { name = 'x', color = 'nope' } }`, "invalid color"},
		{"bad arrow position", `annotate.tools = { { name = 'x', arrowposition = 'middle' } }`, "unknown arrow position"},
		{"tool not a table", `annotate.tools = { 'x' }`, "not a table"},
		{"binding without tool", `annotate.bindings = { { device = 'mouse' } }`, "missing tool"},
		{"bad modifier", `annotate.bindings = { { modifiers = 'hyper', tool = 'x' } }`, "unknown modifier"},
		{"bad hint", `annotate.config = { hints = 'floating' }`, "invalid hints"},
		{"bad switch color", `annotate.switch_colors = { {} }`, "switch_colors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error %q does not mention %q", err, tt.errText)
			}
		})
	}
}

func TestLuaConfigParserScriptsAreIsolated(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}
	defer p.Close()

	if _, err := p.Parse([]byte(`annotate.tools = { { name = 'only' } }`)); err != nil {
		t.Fatalf("first Parse failed: %v", err)
	}
	cfg, err := p.Parse([]byte(`-- second script`))
	if err != nil {
		t.Fatalf("second Parse failed: %v", err)
	}
	if len(cfg.Tools) != len(DefaultTools()) {
		t.Errorf("tools leaked between scripts: %v", cfg.Tools)
	}
}

func TestLuaConfigParserPrintOutput(t *testing.T) {
	var out strings.Builder
	p, err := NewLuaConfigParserWithOutput(&out)
	if err != nil {
		t.Fatalf("NewLuaConfigParserWithOutput failed: %v", err)
	}
	defer p.Close()

	if _, err := p.Parse([]byte(`print('hello')`)); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("output = %q, want hello", out.String())
	}
}

func TestLuaConfigParserClose(t *testing.T) {
	p, err := NewLuaConfigParser()
	if err != nil {
		t.Fatalf("NewLuaConfigParser failed: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
