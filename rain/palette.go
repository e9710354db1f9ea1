package rain

import (
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/matrix-rain/terminal"
)

// Palette assigns a base color to each new stream
type Palette interface {
	Next(r *rand.Rand) terminal.RGB
}

// Solid gives every stream the same color
type Solid terminal.RGB

func (p Solid) Next(*rand.Rand) terminal.RGB {
	return terminal.RGB(p)
}

// Multi picks uniformly among a fixed set of colors
type Multi []terminal.RGB

func (p Multi) Next(r *rand.Rand) terminal.RGB {
	if len(p) == 0 {
		return DefaultColor
	}
	return p[r.IntN(len(p))]
}

// rainbowSteps quantizes hue so the shade cache stays bounded
const rainbowSteps = 36

// Rainbow gives each stream a random fully saturated hue
type Rainbow struct{}

func (Rainbow) Next(r *rand.Rand) terminal.RGB {
	hue := float64(r.IntN(rainbowSteps)) * 360 / rainbowSteps
	return fromColorful(colorful.Hsv(hue, 0.9, 1.0))
}

// DefaultColor is the classic phosphor green
var DefaultColor = terminal.RGB{R: 0, G: 255, B: 43}

func toColorful(c terminal.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) terminal.RGB {
	r, g, b := c.Clamped().RGB255()
	return terminal.RGB{R: r, G: g, B: b}
}
