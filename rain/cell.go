package rain

import "github.com/lixenwraith/matrix-rain/terminal"

// Brightness bounds. A cell at MaxBrightness is a stream head; MinBrightness is cleared
const (
	MaxBrightness uint8 = 255
	MinBrightness uint8 = 0
)

// Cell is one grid position
type Cell struct {
	Rune       rune
	Brightness uint8
	Color      terminal.RGB
}

// Lit reports whether the cell shows a glyph
func (c Cell) Lit() bool {
	return c.Brightness > MinBrightness
}

// age dims the cell by step, clearing it when it bottoms out
func (c *Cell) age(step uint8) {
	if c.Brightness <= step {
		*c = Cell{}
		return
	}
	c.Brightness -= step
}
