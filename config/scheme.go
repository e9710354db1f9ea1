package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// StylePrefix selects a palette taken from a syntax-highlighting style
const StylePrefix = "style:"

// schemes maps scheme names to stream colors
var schemes = map[string]terminal.RGB{
	"green":  rain.DefaultColor,
	"amber":  {R: 255, G: 176, B: 0},
	"red":    {R: 255, G: 40, B: 40},
	"orange": {R: 255, G: 120, B: 0},
	"blue":   {R: 40, G: 120, B: 255},
	"purple": {R: 170, G: 60, B: 255},
	"cyan":   {R: 0, G: 230, B: 230},
	"pink":   {R: 255, G: 90, B: 200},
	"white":  {R: 230, G: 230, B: 230},
}

const rainbowScheme = "rainbow"

// styleTokens are the token classes whose colors make up a style palette
var styleTokens = []chroma.TokenType{
	chroma.Keyword,
	chroma.NameFunction,
	chroma.LiteralString,
	chroma.NameClass,
	chroma.LiteralNumber,
	chroma.Comment,
	chroma.NameBuiltin,
}

// SchemeNames lists the named schemes, sorted, rainbow last
func SchemeNames() []string {
	names := make([]string, 0, len(schemes)+1)
	for name := range schemes {
		names = append(names, name)
	}
	slices.Sort(names)
	return append(names, rainbowScheme)
}

// StyleNames lists the styles usable after StylePrefix
func StyleNames() []string {
	return styles.Names()
}

// ParsePalette resolves a color value: scheme name, #rrggbb, or style:<name>
func ParsePalette(value string) (rain.Palette, error) {
	v := strings.ToLower(strings.TrimSpace(value))

	if v == rainbowScheme {
		return rain.Rainbow{}, nil
	}
	if c, ok := schemes[v]; ok {
		return rain.Solid(c), nil
	}
	if strings.HasPrefix(v, "#") {
		c, err := colorful.Hex(v)
		if err != nil {
			return nil, fmt.Errorf("color %q: %w", value, err)
		}
		r, g, b := c.RGB255()
		return rain.Solid(terminal.RGB{R: r, G: g, B: b}), nil
	}
	if name, ok := strings.CutPrefix(v, StylePrefix); ok {
		return stylePalette(name)
	}
	return nil, fmt.Errorf("unknown color %q", value)
}

// stylePalette collects the distinct token colors of a chroma style
func stylePalette(name string) (rain.Palette, error) {
	style, ok := styles.Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown style %q", name)
	}

	bg := style.Get(chroma.Background).Background
	var colors rain.Multi
	for _, tt := range styleTokens {
		c := style.Get(tt).Colour
		if !c.IsSet() || c == bg {
			continue
		}
		rgb := terminal.RGB{R: c.Red(), G: c.Green(), B: c.Blue()}
		// Near-black entries vanish against the background
		if int(rgb.R)+int(rgb.G)+int(rgb.B) < 96 {
			continue
		}
		if !slices.Contains(colors, rgb) {
			colors = append(colors, rgb)
		}
	}
	if len(colors) == 0 {
		return nil, fmt.Errorf("style %q has no usable colors", name)
	}
	return colors, nil
}
