// Package rain owns the waterfall animation state: a grid of glyph cells sized
// to the terminal and the falling streams that light them.
//
// A Waterfall is driven by a single goroutine. Tick advances every stream whose
// speed interval elapsed, ages the cells of its column and writes a fresh glyph
// at the new head. Draw composes the current grid into terminal cells. All
// randomness comes from the *rand.Rand passed to New, so a fixed seed replays
// the same sequence of grid states.
package rain
