package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Attr represents text attributes (bitmask)
type Attr uint8

const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << 0
	AttrDim  Attr = 1 << 1
)

// Cell represents a single terminal cell
type Cell struct {
	Rune  rune
	Fg    RGB
	Bg    RGB
	Attrs Attr
}

// Terminal provides low-level terminal access
type Terminal interface {
	// Init enters raw mode, alternate screen buffer, hides cursor
	Init() error

	// Fini restores terminal state. Safe to call multiple times
	Fini()

	// Size returns current terminal dimensions
	Size() (width, height int)

	// ResizeChan returns channel that receives resize events
	ResizeChan() <-chan ResizeEvent

	// Events returns the input event channel, closed when input ends
	Events() <-chan Event

	// ColorMode returns detected color capability
	ColorMode() ColorMode

	// Flush writes cell buffer to terminal
	// Cells are row-major: cells[y*width + x]
	Flush(cells []Cell, width, height int) error

	// Sync clears the screen and forces the next Flush to redraw every cell
	Sync() error
}

// ResizeEvent represents a terminal resize
type ResizeEvent struct {
	Width  int
	Height int
}

// termImpl implements Terminal using the Backend interface
type termImpl struct {
	backend Backend

	output   *outputBuffer
	input    *inputReader
	resizeCh chan ResizeEvent

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// New creates a new ANSI Terminal on stdin/stdout
func New(colorMode ColorMode) Terminal {
	return newWithBackend(newBackend(), colorMode)
}

func newWithBackend(b Backend, colorMode ColorMode) *termImpl {
	return &termImpl{
		backend:  b,
		resizeCh: make(chan ResizeEvent, 1),
		output:   newOutputBuffer(b, colorMode),
		input:    newInputReader(b),
	}
}

// Init enters raw mode and sets up terminal
func (t *termImpl) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	if err := t.backend.Init(); err != nil {
		return err
	}

	w, h := t.backend.Size()
	t.output.resize(w, h)

	t.backend.SetResizeHandler(func(w, h int) {
		if w <= 0 || h <= 0 {
			return
		}
		// Keep only the latest size pending
		select {
		case t.resizeCh <- ResizeEvent{Width: w, Height: h}:
		default:
			select {
			case <-t.resizeCh:
			default:
			}
			select {
			case t.resizeCh <- ResizeEvent{Width: w, Height: h}:
			default:
			}
		}
	})

	for _, seq := range []string{seqAltScreenEnter, seqCursorHide, seqAutoWrapOff} {
		if err := t.writeRaw(seq); err != nil {
			t.restore()
			return fmt.Errorf("terminal setup: %w", err)
		}
	}

	if err := t.output.clear(RGBBlack); err != nil {
		t.restore()
		return err
	}

	t.input.start()

	t.initialized = true
	return nil
}

// Fini restores terminal state
func (t *termImpl) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	t.input.stop()
	t.restore()
	t.finalized = true
}

// restore undoes Init's screen modes and returns the tty to cooked mode
func (t *termImpl) restore() {
	// Best effort: the tty may already be gone
	_ = t.writeRaw(seqSGR0)
	_ = t.writeRaw(seqCursorShow)
	_ = t.writeRaw(seqAltScreenExit)
	// Re-enable after leaving alt screen so the main buffer keeps wrapping
	_ = t.writeRaw(seqAutoWrapOn)
	t.backend.Fini()
}

// Size returns current terminal dimensions
func (t *termImpl) Size() (int, int) {
	return t.backend.Size()
}

// ResizeChan returns the resize event channel
func (t *termImpl) ResizeChan() <-chan ResizeEvent {
	return t.resizeCh
}

// Events returns the input event channel
func (t *termImpl) Events() <-chan Event {
	return t.input.events()
}

// ColorMode returns detected color capability
func (t *termImpl) ColorMode() ColorMode {
	return t.output.colorMode
}

// Flush writes cell buffer to terminal
// Holds lock for entire operation to prevent race with Fini
func (t *termImpl) Flush(cells []Cell, width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return nil
	}

	// Drop frames composed for a stale size; the pending resize event will correct it
	currW, currH := t.backend.Size()
	if currW != width || currH != height {
		return nil
	}

	return t.output.flush(cells, width, height)
}

// Sync forces full redraw
func (t *termImpl) Sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return nil
	}

	// Diff-based rendering assumes physical terminal matches front buffer state
	if err := t.output.clear(RGBBlack); err != nil {
		return err
	}
	t.output.forceFullRedraw()
	return nil
}

// writeRaw writes a control sequence to output, bypassing the diff buffer
func (t *termImpl) writeRaw(seq string) error {
	_, err := io.WriteString(t.backend, seq)
	return err
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	for _, seq := range []string{seqCursorShow, seqAltScreenExit, seqSGR0, seqAutoWrapOn, seqReset} {
		io.WriteString(w, seq)
	}

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
