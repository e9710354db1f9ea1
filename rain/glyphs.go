package rain

import (
	"math/rand/v2"

	"github.com/mattn/go-runewidth"
)

// DefaultGlyphs is half-width katakana with digits and a few symbols
var DefaultGlyphs = []rune("ﾊﾐﾋｰｳｼﾅﾓﾆｻﾜﾂｵﾘｱﾎﾃﾏｹﾒｴｶｷﾑﾕﾗｾﾈｽﾀﾇﾍｦｲｸｺｿﾁﾄﾉﾌﾔﾖﾙﾚﾛﾝ012345789Z:.\"=*+-<>¦╌ç")

// narrow measures with East Asian ambiguous width off, independent of locale
var narrow = &runewidth.Condition{EastAsianWidth: false}

// NarrowGlyphs keeps the runes that occupy exactly one terminal column;
// wide or zero-width glyphs would shift every cell right of them
func NarrowGlyphs(in []rune) []rune {
	out := make([]rune, 0, len(in))
	seen := make(map[rune]bool, len(in))
	for _, r := range in {
		if seen[r] || r == ' ' {
			continue
		}
		if narrow.RuneWidth(r) != 1 {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// pickGlyph draws one rune from set
func pickGlyph(r *rand.Rand, set []rune) rune {
	return set[r.IntN(len(set))]
}
