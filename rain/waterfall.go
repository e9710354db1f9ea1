package rain

import (
	"math/rand/v2"

	"github.com/lixenwraith/matrix-rain/terminal"
)

// Defaults applied by New when Options leave a field zero
const (
	DefaultDensity    = 0.1
	DefaultGlitchRate = 0.02
	// initialOnScreen is the share of columns that start with a stream already mid-fall
	initialOnScreen = 0.5
)

// speedTable weights per-stream speeds (ticks per row) towards fast
var speedTable = [...]int{1, 1, 1, 2, 2, 3}

// Options configure a Waterfall; zero fields take defaults
type Options struct {
	Palette Palette
	Glyphs  []rune
	// Density is the probability that an idle column spawns a stream on a tick
	Density float64
	// GlitchRate is the per-tick probability that a lit cell swaps its glyph
	GlitchRate float64
	// Mono renders brightness as attributes instead of color
	Mono bool
	// OnSpawn, if set, is called with the column of every stream spawned by Tick
	OnSpawn func(column int)
}

// TickStats reports what a Tick changed
type TickStats struct {
	Advanced int
	Spawned  int
	Removed  int
}

// Waterfall is the animation state: grid plus streams
type Waterfall struct {
	width  int
	height int
	cells  []Cell // row-major: cells[y*width + x]

	streams []*Stream
	busy    []bool // per column: a stream owns it

	opts  Options
	rng   *rand.Rand
	shade *shader
	ticks uint64
}

// NewRand returns a deterministic generator for seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New allocates a width x height grid and seeds the initial streams
func New(width, height int, opts Options, rng *rand.Rand) *Waterfall {
	if opts.Palette == nil {
		opts.Palette = Solid(DefaultColor)
	}
	if glyphs := NarrowGlyphs(opts.Glyphs); len(glyphs) > 0 {
		opts.Glyphs = glyphs
	} else {
		opts.Glyphs = NarrowGlyphs(DefaultGlyphs)
	}
	if opts.Density <= 0 {
		opts.Density = DefaultDensity
	}
	opts.Density = min(opts.Density, 1)
	if opts.GlitchRate < 0 {
		opts.GlitchRate = 0
	}
	if rng == nil {
		rng = NewRand(0)
	}

	w := &Waterfall{
		opts:  opts,
		rng:   rng,
		shade: newShader(),
	}
	w.allocate(width, height)
	w.seed()
	return w
}

// allocate sizes the grid, clamping negative dimensions to zero
func (w *Waterfall) allocate(width, height int) {
	w.width = max(width, 0)
	w.height = max(height, 0)
	w.cells = make([]Cell, w.width*w.height)
	w.busy = make([]bool, w.width)
}

// seed places one stream per column: half already falling with a drawn trail, the rest delayed at the top
func (w *Waterfall) seed() {
	if w.height == 0 {
		return
	}
	for x := 0; x < w.width; x++ {
		s := w.newStream(x)
		if w.rng.Float64() < initialOnScreen {
			s.Pos = w.rng.IntN(w.height)
			w.prime(s)
		} else {
			s.Delay = w.rng.IntN(w.height + 1)
		}
		w.streams = append(w.streams, s)
		w.busy[x] = true
	}
}

// prime draws the trail a stream at s.Pos would have left behind
func (w *Waterfall) prime(s *Stream) {
	for row := max(s.Tail(), 0); row <= s.Pos && row < w.height; row++ {
		dist := s.Pos - row
		b := int(MaxBrightness) - dist*int(s.fade)
		if b <= 0 {
			continue
		}
		w.cells[row*w.width+s.Column] = Cell{
			Rune:       pickGlyph(w.rng, w.opts.Glyphs),
			Brightness: uint8(b),
			Color:      s.Color,
		}
	}
}

// newStream creates a stream above the top row of column x
func (w *Waterfall) newStream(x int) *Stream {
	lo, hi := lengthRange(w.height)
	// Integer fades clear some lengths early; shrink to what actually stays lit
	fade := fadeStep(lo + w.rng.IntN(hi-lo+1))
	length := trailLength(fade)
	return &Stream{
		Column: x,
		Pos:    -1,
		Length: length,
		Speed:  speedTable[w.rng.IntN(len(speedTable))],
		Color:  w.opts.Palette.Next(w.rng),
		fade:   fade,
	}
}

// lengthRange bounds trail length relative to screen height
func lengthRange(height int) (int, int) {
	lo := max(3, height/5)
	hi := max(lo+1, height*2/3)
	return lo, hi
}

// Tick advances the animation by one step
func (w *Waterfall) Tick() TickStats {
	var stats TickStats
	w.ticks++
	if w.width == 0 || w.height == 0 {
		return stats
	}

	// Glitch before heads move so a fresh head keeps its glyph for one frame
	if w.opts.GlitchRate > 0 {
		for i := range w.cells {
			c := &w.cells[i]
			if c.Lit() && c.Brightness < MaxBrightness && w.rng.Float64() < w.opts.GlitchRate {
				c.Rune = pickGlyph(w.rng, w.opts.Glyphs)
			}
		}
	}

	kept := w.streams[:0]
	for _, s := range w.streams {
		if w.advance(s) {
			stats.Advanced++
		}
		if s.exited(w.height) {
			w.busy[s.Column] = false
			stats.Removed++
			continue
		}
		kept = append(kept, s)
	}
	// Clear dangling pointers beyond the kept prefix
	for i := len(kept); i < len(w.streams); i++ {
		w.streams[i] = nil
	}
	w.streams = kept

	for x := 0; x < w.width; x++ {
		if w.busy[x] || w.rng.Float64() >= w.opts.Density {
			continue
		}
		w.streams = append(w.streams, w.newStream(x))
		w.busy[x] = true
		stats.Spawned++
		if w.opts.OnSpawn != nil {
			w.opts.OnSpawn(x)
		}
	}

	return stats
}

// advance moves s down one row once its speed interval elapsed, reporting whether it moved
func (w *Waterfall) advance(s *Stream) bool {
	if s.Delay > 0 {
		s.Delay--
		return false
	}
	s.acc++
	if s.acc < s.Speed {
		return false
	}
	s.acc = 0

	x := s.Column
	for y := 0; y < w.height; y++ {
		c := &w.cells[y*w.width+x]
		if c.Lit() {
			c.age(s.fade)
		}
	}

	s.Pos++
	if s.Pos < w.height {
		w.cells[s.Pos*w.width+x] = Cell{
			Rune:       pickGlyph(w.rng, w.opts.Glyphs),
			Brightness: MaxBrightness,
			Color:      s.Color,
		}
	}
	return true
}

// Resize reallocates the grid, keeping the overlapping region and the streams that still fit
func (w *Waterfall) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	if width == w.width && height == w.height {
		return
	}

	oldCells, oldW, oldH := w.cells, w.width, w.height
	w.allocate(width, height)

	copyW := min(oldW, w.width)
	copyH := min(oldH, w.height)
	for y := 0; y < copyH; y++ {
		copy(w.cells[y*w.width:y*w.width+copyW], oldCells[y*oldW:y*oldW+copyW])
	}

	kept := w.streams[:0]
	for _, s := range w.streams {
		if s.Column >= w.width || w.height == 0 || s.exited(w.height) {
			continue
		}
		w.busy[s.Column] = true
		kept = append(kept, s)
	}
	for i := len(kept); i < len(w.streams); i++ {
		w.streams[i] = nil
	}
	w.streams = kept
}

// Draw composes the grid into dst, which must hold at least width*height cells
func (w *Waterfall) Draw(dst []terminal.Cell) {
	n := w.width * w.height
	if len(dst) < n {
		return
	}
	for i := 0; i < n; i++ {
		c := w.cells[i]
		if !c.Lit() {
			dst[i] = terminal.Cell{Rune: ' ', Bg: Background}
			continue
		}
		head := c.Brightness == MaxBrightness
		if w.opts.Mono {
			dst[i] = terminal.Cell{Rune: c.Rune, Fg: terminal.RGB{R: 255, G: 255, B: 255}, Bg: Background, Attrs: w.shade.mono(c.Brightness, head)}
			continue
		}
		dst[i] = terminal.Cell{Rune: c.Rune, Fg: w.shade.color(c.Color, c.Brightness, head), Bg: Background}
	}
}

// Size returns the grid dimensions
func (w *Waterfall) Size() (int, int) {
	return w.width, w.height
}

// Cell returns the cell at column x, row y; out of range yields a cleared cell
func (w *Waterfall) Cell(x, y int) Cell {
	if x < 0 || y < 0 || x >= w.width || y >= w.height {
		return Cell{}
	}
	return w.cells[y*w.width+x]
}

// Cells returns a copy of the grid, row-major
func (w *Waterfall) Cells() []Cell {
	out := make([]Cell, len(w.cells))
	copy(out, w.cells)
	return out
}

// Streams returns copies of the active streams
func (w *Waterfall) Streams() []Stream {
	out := make([]Stream, len(w.streams))
	for i, s := range w.streams {
		out[i] = *s
	}
	return out
}

// Ticks returns the number of Tick calls so far
func (w *Waterfall) Ticks() uint64 {
	return w.ticks
}

// StreamCount returns the number of active streams
func (w *Waterfall) StreamCount() int {
	return len(w.streams)
}
