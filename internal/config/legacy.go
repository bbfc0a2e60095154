// Package config provides configuration parsing for go-annotate.
// This file implements the parser for the classic tool definition format:
//
//	"red Pen" = PEN (size=5 color="red");
//	"blue Pen" = "red Pen" (color="blue");
//	"default" = "red Pen";
//	"default"[SHIFT] = "blue Pen";
//	"default"[Button3] = "Eraser";

package config

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/opd-ai/go-annotate/internal/paint"
	"github.com/opd-ai/go-annotate/internal/stroke"
)

// LegacyParser parses tool definition files in the classic format, where
// each statement defines a tool or binds one to a device.
type LegacyParser struct{}

// NewLegacyParser creates a new LegacyParser instance.
func NewLegacyParser() *LegacyParser {
	return &LegacyParser{}
}

// Parse parses a classic tool definition file. The overlay settings keep
// their defaults; tools and bindings are replaced by the file's.
func (p *LegacyParser) Parse(content []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Tools = nil
	cfg.Bindings = nil

	src, err := stripComments(string(content))
	if err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	ls := newLegacyScanner(src)
	for ls.peek() != scanner.EOF {
		if err := p.parseStatement(&cfg, ls); err != nil {
			return nil, err
		}
	}
	if ls.err != nil {
		return nil, ls.err
	}
	return &cfg, nil
}

// stripComments drops lines starting with '#'. A '#' elsewhere is kept so
// hex colors inside strings survive.
func stripComments(s string) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), sc.Err()
}

// parseStatement parses one tool definition or binding up to its ';'.
func (p *LegacyParser) parseStatement(cfg *Config, ls *legacyScanner) error {
	name, err := ls.expectString()
	if err != nil {
		return err
	}

	var (
		binding BindingConfig
		isBind  bool
	)
	if ls.peek() == '[' {
		binding, err = p.parseSelector(ls, name)
		if err != nil {
			return err
		}
		isBind = true
	}

	if err := ls.expect('='); err != nil {
		return err
	}

	switch ls.peek() {
	case scanner.Ident:
		if isBind {
			return ls.errorf("binding %q needs a tool name, not a type", name)
		}
		typeName := ls.next()
		tool, err := newLegacyTool(name, typeName)
		if err != nil {
			return ls.errorf("%v", err)
		}
		if err := p.parseOptions(ls, &tool); err != nil {
			return err
		}
		cfg.Tools = append(cfg.Tools, tool)

	case scanner.String:
		target, _ := ls.expectString()
		if ls.peek() == '(' {
			if isBind {
				return ls.errorf("binding %q cannot take options", name)
			}
			base, ok := cfg.Tool(target)
			if !ok {
				return ls.errorf("%w %q", ErrUnknownTool, target)
			}
			base.Name = name
			if err := p.parseOptions(ls, &base); err != nil {
				return err
			}
			cfg.Tools = append(cfg.Tools, base)
			break
		}
		if !isBind {
			binding = BindingConfig{Device: name}
		}
		binding.Tool = target
		cfg.Bindings = append(cfg.Bindings, binding)

	default:
		return ls.errorf("expected tool type or name after %q =", name)
	}

	return ls.expect(';')
}

// parseSelector parses "[SHIFT, Button3]" after a device name.
func (p *LegacyParser) parseSelector(ls *legacyScanner, device string) (BindingConfig, error) {
	b := BindingConfig{Device: device}
	if err := ls.expect('['); err != nil {
		return b, err
	}
	for ls.peek() != ']' {
		switch ls.peek() {
		case ',':
			ls.next()
		case scanner.Int:
			n, err := strconv.Atoi(ls.next())
			if err != nil {
				return b, ls.errorf("bad button: %v", err)
			}
			b.Button = n
		case scanner.Ident:
			word := ls.next()
			if err := applySelectorWord(&b, word); err != nil {
				return b, ls.errorf("%v", err)
			}
		default:
			return b, ls.errorf("unexpected %s in binding of %q", ls.text(), device)
		}
	}
	ls.next()
	return b, nil
}

func applySelectorWord(b *BindingConfig, word string) error {
	lower := strings.ToLower(word)
	if rest, ok := strings.CutPrefix(lower, "button"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return fmt.Errorf("bad button %q", word)
		}
		b.Button = n
		return nil
	}
	mods, err := paint.ParseModifiers(lower)
	if err != nil {
		return err
	}
	b.Modifiers |= mods
	return nil
}

func newLegacyTool(name, typeName string) (ToolConfig, error) {
	t, err := paint.ParseType(typeName)
	if err != nil {
		return ToolConfig{}, err
	}
	tool := ToolConfig{
		Name:    name,
		Type:    t,
		Color:   paint.Red.RGBA(),
		Size:    DefaultPenSize,
		MinSize: 1,
	}
	if t == paint.Eraser {
		tool.Size = DefaultEraserSize
	}
	return tool, nil
}

// parseOptions parses an optional "(key=value ...)" list into tool.
func (p *LegacyParser) parseOptions(ls *legacyScanner, tool *ToolConfig) error {
	if ls.peek() != '(' {
		return nil
	}
	ls.next()
	for ls.peek() != ')' {
		if ls.peek() == ',' {
			ls.next()
			continue
		}
		if ls.peek() != scanner.Ident {
			return ls.errorf("expected option name in %q", tool.Name)
		}
		key := strings.ToLower(ls.next())
		if err := ls.expect('='); err != nil {
			return err
		}
		if ls.peek() == scanner.EOF {
			return ls.errorf("missing value for %s", key)
		}
		value := ls.value()
		if err := applyLegacyOption(tool, key, value); err != nil {
			return ls.errorf("%s: %v", tool.Name, err)
		}
	}
	ls.next()
	return nil
}

func applyLegacyOption(tool *ToolConfig, key, value string) error {
	switch key {
	case "size":
		n, err := parseFloat(value)
		if err != nil {
			return fmt.Errorf("invalid size: %w", err)
		}
		tool.Size = int(n)
	case "minsize":
		n, err := parseInt(value)
		if err != nil {
			return fmt.Errorf("invalid minsize: %w", err)
		}
		tool.MinSize = n
	case "maxsize":
		n, err := parseInt(value)
		if err != nil {
			return fmt.Errorf("invalid maxsize: %w", err)
		}
		tool.MaxSize = n
	case "color":
		c, err := paint.ParseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color: %w", err)
		}
		tool.Color = c
	case "arrowsize":
		f, err := parseFloat(value)
		if err != nil {
			return fmt.Errorf("invalid arrowsize: %w", err)
		}
		tool.ArrowSize = f
		if tool.ArrowPosition == stroke.ArrowNone {
			tool.ArrowPosition = stroke.ArrowEnd
		}
	case "arrowtype":
		if strings.EqualFold(value, "double") {
			value = "both"
		}
		pos, err := stroke.ParseArrowPosition(value)
		if err != nil {
			return err
		}
		tool.ArrowPosition = pos
	default:
		// Unknown options are ignored for compatibility with other versions
		// of the format.
	}
	return nil
}

// parseBool parses a boolean value from common string representations.
// Accepts: yes, no, true, false, 1, 0
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

// parseFloat parses a float64 from a string.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	return strconv.ParseFloat(s, 64)
}

// parseInt parses an int from a string.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	return strconv.Atoi(s)
}

// legacyScanner wraps text/scanner with one token of lookahead.
type legacyScanner struct {
	s    scanner.Scanner
	tok  rune
	err  error
	prev string
}

func newLegacyScanner(src string) *legacyScanner {
	ls := &legacyScanner{}
	ls.s.Init(strings.NewReader(src))
	ls.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings
	ls.s.Filename = "config"
	ls.s.Error = func(s *scanner.Scanner, msg string) {
		if ls.err == nil {
			ls.err = fmt.Errorf("%s: %s", s.Position, msg)
		}
	}
	ls.tok = ls.s.Scan()
	return ls
}

func (ls *legacyScanner) peek() rune {
	if ls.err != nil {
		return scanner.EOF
	}
	return ls.tok
}

func (ls *legacyScanner) text() string {
	if ls.tok == scanner.EOF {
		return "end of file"
	}
	return strconv.Quote(ls.s.TokenText())
}

// next consumes the current token and returns its text.
func (ls *legacyScanner) next() string {
	ls.prev = ls.s.TokenText()
	ls.tok = ls.s.Scan()
	return ls.prev
}

// value consumes an option value: a string, a number or an identifier.
func (ls *legacyScanner) value() string {
	if ls.tok == scanner.String {
		v, err := strconv.Unquote(ls.next())
		if err != nil {
			return ls.prev
		}
		return v
	}
	return ls.next()
}

func (ls *legacyScanner) expect(tok rune) error {
	if ls.peek() != tok {
		return ls.errorf("expected %q, got %s", tok, ls.text())
	}
	ls.next()
	return nil
}

func (ls *legacyScanner) expectString() (string, error) {
	if ls.peek() != scanner.String {
		return "", ls.errorf("expected quoted name, got %s", ls.text())
	}
	v, err := strconv.Unquote(ls.next())
	if err != nil {
		return "", ls.errorf("bad string: %v", err)
	}
	return v, nil
}

func (ls *legacyScanner) errorf(format string, args ...any) error {
	if ls.err != nil {
		return ls.err
	}
	return fmt.Errorf("line %d: %w", ls.s.Position.Line, fmt.Errorf(format, args...))
}
