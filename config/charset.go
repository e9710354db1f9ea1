package config

import (
	"slices"

	"github.com/lixenwraith/matrix-rain/rain"
)

var charsets = map[string][]rune{
	"katakana": rain.DefaultGlyphs,
	"binary":   []rune("01"),
	"digits":   []rune("0123456789"),
	"ascii":    []rune("!\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"),
	"greek":    []rune("ΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩαβγδεζηθικλμνξοπρστυφχψω"),
}

// CharsetNames lists the named glyph sets, sorted
func CharsetNames() []string {
	names := make([]string, 0, len(charsets))
	for name := range charsets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseCharset resolves a charset name or treats value as a literal glyph list.
// Glyphs that are not exactly one column wide are dropped; ok is false when nothing usable remains.
func ParseCharset(value string) (glyphs []rune, ok bool) {
	set, named := charsets[value]
	if !named {
		set = []rune(value)
	}
	glyphs = rain.NarrowGlyphs(set)
	return glyphs, len(glyphs) > 0
}
