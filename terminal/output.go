package terminal

import (
	"bufio"
	"io"
)

// outputBuffer manages double-buffered terminal output with diffing
type outputBuffer struct {
	front     []Cell
	width     int
	height    int
	colorMode ColorMode
	writer    *bufio.Writer

	cursorX     int
	cursorY     int
	cursorValid bool

	// Style state for coalescing
	lastFg    RGB
	lastBg    RGB
	lastAttr  Attr
	lastValid bool
}

// newOutputBuffer creates a new output buffer
func newOutputBuffer(w io.Writer, colorMode ColorMode) *outputBuffer {
	return &outputBuffer{
		writer:    bufio.NewWriterSize(w, 131072), // 128KB buffer
		colorMode: colorMode,
	}
}

// resize updates buffer dimensions
func (o *outputBuffer) resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	size := width * height
	if cap(o.front) < size {
		o.front = make([]Cell, size)
	} else {
		o.front = o.front[:size]
	}
	o.width = width
	o.height = height

	for i := range o.front {
		o.front[i] = Cell{Rune: 0}
	}
	o.lastValid = false
	o.cursorValid = false
}

// cellEqual compares two cells for equality (standalone for inlining)
func (o *outputBuffer) cellEqual(a, b Cell) bool {
	if a.Rune != b.Rune || a.Attrs != b.Attrs {
		return false
	}
	if o.colorMode == ColorModeMono {
		return true
	}
	if a.Rune == 0 || a.Rune == ' ' {
		return a.Bg == b.Bg
	}
	return a.Fg == b.Fg && a.Bg == b.Bg
}

// flush writes the back buffer to terminal, diffing against front buffer
func (o *outputBuffer) flush(cells []Cell, width, height int) error {
	if width != o.width || height != o.height {
		o.resize(width, height)
	}

	if len(cells) < width*height {
		return nil
	}

	w := o.writer

	for y := 0; y < height; y++ {
		rowStart := y * width
		x := 0

		for x < width {
			idx := rowStart + x
			if o.cellEqual(cells[idx], o.front[idx]) {
				x++
				continue
			}

			// Position cursor once for this dirty region
			if !o.cursorValid || x != o.cursorX || y != o.cursorY {
				if o.cursorValid && y == o.cursorY && x > o.cursorX {
					writeCursorForward(w, x-o.cursorX)
				} else {
					writeCursorPos(w, x, y)
				}
				o.cursorX = x
				o.cursorY = y
				o.cursorValid = true
			}

			// Write all contiguous dirty cells, emitting style only when changed
			for x < width {
				cidx := rowStart + x
				c := cells[cidx]

				if o.cellEqual(c, o.front[cidx]) {
					break
				}

				o.writeStyleCoalesced(w, c.Fg, c.Bg, c.Attrs)

				r := c.Rune
				if r == 0 {
					r = ' '
				}
				if r < 0x80 {
					w.WriteByte(byte(r))
				} else {
					w.WriteRune(r)
				}

				o.front[cidx] = c
				o.cursorX++
				x++
			}
		}
	}

	w.WriteString(seqSGR0)
	o.lastValid = false

	return w.Flush()
}

// writeStyleCoalesced emits a single combined SGR sequence when style changes
func (o *outputBuffer) writeStyleCoalesced(w *bufio.Writer, fg, bg RGB, attr Attr) {
	mono := o.colorMode == ColorModeMono
	fgChanged := !mono && (!o.lastValid || fg != o.lastFg)
	bgChanged := !mono && (!o.lastValid || bg != o.lastBg)
	attrChanged := !o.lastValid || attr != o.lastAttr

	if !fgChanged && !bgChanged && !attrChanged {
		return
	}

	if attrChanged {
		// Attribute removal needs a reset, which also drops colors
		w.WriteString(seqCSI)
		w.WriteByte('0')
		if attr&AttrBold != 0 {
			w.WriteString(";1")
		}
		if attr&AttrDim != 0 {
			w.WriteString(";2")
		}
		if !mono {
			o.writeFgInline(w, fg)
			o.writeBgInline(w, bg)
		}
		w.WriteByte('m')
	} else {
		// Separate sequences: an empty first parameter would read as SGR 0 and drop attributes
		if fgChanged {
			o.writeFgFull(w, fg)
		}
		if bgChanged {
			o.writeBgFull(w, bg)
		}
	}

	o.lastFg = fg
	o.lastBg = bg
	o.lastAttr = attr
	o.lastValid = true
}

// writeColorParams writes R;G;B or the nearest palette index, no prefix or suffix
func (o *outputBuffer) writeColorParams(w *bufio.Writer, c RGB) {
	if o.colorMode == ColorModeTrueColor {
		writeInt(w, int(c.R))
		w.WriteByte(';')
		writeInt(w, int(c.G))
		w.WriteByte(';')
		writeInt(w, int(c.B))
		return
	}
	writeInt(w, int(RGBTo256(c)))
}

// writeFgInline writes fg color parameters (leading ';', no CSI prefix, no 'm' suffix)
func (o *outputBuffer) writeFgInline(w *bufio.Writer, fg RGB) {
	if o.colorMode == ColorModeTrueColor {
		w.WriteString(";38;2;")
	} else {
		w.WriteString(";38;5;")
	}
	o.writeColorParams(w, fg)
}

// writeBgInline writes bg color parameters (leading ';', no CSI prefix, no 'm' suffix)
func (o *outputBuffer) writeBgInline(w *bufio.Writer, bg RGB) {
	if o.colorMode == ColorModeTrueColor {
		w.WriteString(";48;2;")
	} else {
		w.WriteString(";48;5;")
	}
	o.writeColorParams(w, bg)
}

// writeFgFull writes complete fg color sequence
func (o *outputBuffer) writeFgFull(w *bufio.Writer, fg RGB) {
	if o.colorMode == ColorModeTrueColor {
		w.WriteString(seqFgRGB)
	} else {
		w.WriteString(seqFg256)
	}
	o.writeColorParams(w, fg)
	w.WriteByte('m')
}

// writeBgFull writes complete bg color sequence
func (o *outputBuffer) writeBgFull(w *bufio.Writer, bg RGB) {
	if o.colorMode == ColorModeTrueColor {
		w.WriteString(seqBgRGB)
	} else {
		w.WriteString(seqBg256)
	}
	o.writeColorParams(w, bg)
	w.WriteByte('m')
}

// forceFullRedraw clears front buffer to force complete redraw
func (o *outputBuffer) forceFullRedraw() {
	for i := range o.front {
		o.front[i] = Cell{Rune: 0}
	}
	o.lastValid = false
	o.cursorValid = false
}

// clear writes a clear screen with specified background
func (o *outputBuffer) clear(bg RGB) error {
	w := o.writer
	w.WriteString(seqSGR0)
	if o.colorMode != ColorModeMono {
		o.writeBgFull(w, bg)
	}
	w.WriteString(seqClear)

	o.lastValid = false
	o.cursorValid = false

	for i := range o.front {
		o.front[i] = Cell{Rune: ' ', Bg: bg}
	}
	return w.Flush()
}
