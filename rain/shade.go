package rain

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/matrix-rain/terminal"
)

// Shading constants, HSL fractions
const (
	// Trail saturation and lightness never drop below this, so old glyphs stay visible until cleared
	minTrailHSL = 0.10
	// Heads render as a pale tint of the stream hue
	headSaturation = 0.35
	headLightness  = 0.92
	// Brightness is quantized to 1<<shadeBits levels for caching
	shadeBits = 5
)

// Background is the color behind every cell
var Background = terminal.RGBBlack

type shadeKey struct {
	base  terminal.RGB
	level uint8
	head  bool
}

// shader converts cell brightness into a display color, memoized per base color
type shader struct {
	cache map[shadeKey]terminal.RGB
}

func newShader() *shader {
	return &shader{cache: make(map[shadeKey]terminal.RGB, 256)}
}

// color returns the foreground for a lit cell
func (s *shader) color(base terminal.RGB, brightness uint8, head bool) terminal.RGB {
	key := shadeKey{base: base, level: brightness >> (8 - shadeBits), head: head}
	if c, ok := s.cache[key]; ok {
		return c
	}

	h, sat, l := toColorful(base).Hsl()
	var out terminal.RGB
	if head {
		out = fromColorful(colorful.Hsl(h, sat*headSaturation, max(l, headLightness)))
	} else {
		// Scale by the level's upper bound so the freshest trail cell keeps full color
		f := float64(int(key.level)+1) / float64(1<<shadeBits)
		out = fromColorful(colorful.Hsl(h, max(sat*f, minTrailHSL), max(l*f, minTrailHSL)))
	}
	s.cache[key] = out
	return out
}

// mono maps brightness onto attributes for terminals without color
func (s *shader) mono(brightness uint8, head bool) terminal.Attr {
	switch {
	case head:
		return terminal.AttrBold
	case brightness >= MaxBrightness/2:
		return terminal.AttrNone
	default:
		return terminal.AttrDim
	}
}
