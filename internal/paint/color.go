package paint

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// BasicColor indexes the fixed palette the switch-color hotkeys choose from.
type BasicColor int

const (
	Black BasicColor = iota
	White
	Red
	Green
	Blue
	Yellow
	basicColorCount
)

// BasicColorCount is the number of switch colors.
const BasicColorCount = int(basicColorCount)

var basicColorNames = [...]string{"black", "white", "red", "green", "blue", "yellow"}

var basicColorValues = [...]color.RGBA{
	{A: 255},
	{R: 255, G: 255, B: 255, A: 255},
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
}

// String returns the color name.
func (b BasicColor) String() string {
	if b < 0 || b >= basicColorCount {
		return fmt.Sprintf("BasicColor(%d)", int(b))
	}
	return basicColorNames[b]
}

// RGBA returns the palette value.
func (b BasicColor) RGBA() color.RGBA {
	if b < 0 || b >= basicColorCount {
		return color.RGBA{}
	}
	return basicColorValues[b]
}

// OutlineColor is the edge color of arrowheads.
var OutlineColor = Black.RGBA()

var colorNames = map[string]color.RGBA{
	"black":   Black.RGBA(),
	"white":   White.RGBA(),
	"red":     Red.RGBA(),
	"green":   Green.RGBA(),
	"blue":    Blue.RGBA(),
	"yellow":  Yellow.RGBA(),
	"cyan":    {G: 255, B: 255, A: 255},
	"magenta": {R: 255, B: 255, A: 255},
	"orange":  {R: 255, G: 165, A: 255},
	"purple":  {R: 128, B: 128, A: 255},
	"gray":    {R: 128, G: 128, B: 128, A: 255},
	"grey":    {R: 128, G: 128, B: 128, A: 255},
}

// ParseColor parses a color name or a #RRGGBB / #RRGGBBAA hex value. The
// result is alpha-premultiplied.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	if c, ok := colorNames[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color format: %s", s)
	}

	var comp [4]uint8
	comp[3] = 255
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid component %d in color: %s", i, s)
		}
		comp[i] = uint8(v)
	}

	nc := color.NRGBA{R: comp[0], G: comp[1], B: comp[2], A: comp[3]}
	return color.RGBAModel.Convert(nc).(color.RGBA), nil
}
