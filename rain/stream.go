package rain

import "github.com/lixenwraith/matrix-rain/terminal"

// Stream is one falling run of glyphs in a single column
type Stream struct {
	Column int
	// Pos counts rows advanced: -1 before entering the grid, may exceed the
	// last row while the tail drains
	Pos    int
	Length int
	// Speed is the number of ticks per row advance, >= 1
	Speed int
	// Delay is the number of ticks to wait before the first advance
	Delay int
	Color terminal.RGB

	acc  int
	fade uint8
}

// Head returns the row of the head clamped to the grid, -1 when not yet visible
func (s *Stream) Head(height int) int {
	if s.Pos < 0 {
		return -1
	}
	return min(s.Pos, height-1)
}

// Tail returns the row of the last trail cell, may be negative or beyond the grid
func (s *Stream) Tail() int {
	return s.Pos - s.Length + 1
}

// exited reports whether the whole trail passed the bottom edge
func (s *Stream) exited(height int) bool {
	return s.Tail() >= height
}

// fadeStep is the per-advance brightness loss that clears a cell within length advances of its head write
func fadeStep(length int) uint8 {
	if length < 1 {
		length = 1
	}
	step := (int(MaxBrightness) + length - 1) / length
	return uint8(min(step, int(MaxBrightness)))
}

// trailLength is the number of cells a fade step keeps lit, head included.
// A cell is cleared on exactly the advance that moves the tail past it
func trailLength(fade uint8) int {
	if fade == 0 {
		return int(MaxBrightness)
	}
	return (int(MaxBrightness) + int(fade) - 1) / int(fade)
}
