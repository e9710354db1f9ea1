package terminal

import (
	"bufio"
	"strconv"
)

// Escape sequences the renderer emits. Strings so bufio.Writer.WriteString copies without conversion
const (
	seqCSI   = "\x1b["
	seqClear = "\x1b[2J\x1b[H"
	// seqReset is RIS, a full terminal reset for crash paths
	seqReset = "\x1bc"
	seqSGR0  = "\x1b[0m"

	seqCursorHide = "\x1b[?25l"
	seqCursorShow = "\x1b[?25h"

	seqAltScreenEnter = "\x1b[?1049h"
	seqAltScreenExit  = "\x1b[?1049l"
	// DECAWM off keeps a write to the bottom-right cell from scrolling the screen
	seqAutoWrapOn  = "\x1b[?7h"
	seqAutoWrapOff = "\x1b[?7l"

	// Foreground/background selectors, parameters and 'm' follow
	seqFg256 = "\x1b[38;5;"
	seqBg256 = "\x1b[48;5;"
	seqFgRGB = "\x1b[38;2;"
	seqBgRGB = "\x1b[48;2;"
)

// writeInt writes a non-negative decimal; negative input writes 0
func writeInt(w *bufio.Writer, n int) {
	var scratch [20]byte
	w.Write(strconv.AppendInt(scratch[:0], int64(max(n, 0)), 10))
}

// writeCursorPos moves the cursor to column x, row y (both 0-based)
func writeCursorPos(w *bufio.Writer, x, y int) {
	w.WriteString(seqCSI)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}

// writeCursorForward skips n columns; CUF with no parameter moves one
func writeCursorForward(w *bufio.Writer, n int) {
	if n <= 0 {
		return
	}
	w.WriteString(seqCSI)
	if n > 1 {
		writeInt(w, n)
	}
	w.WriteByte('C')
}
