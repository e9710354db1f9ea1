package terminal

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"
)

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey EventType = iota
	EventResize
	EventError  // Read error
	EventClosed // Input closed
)

// Event represents a terminal input event
type Event struct {
	Type   EventType
	Key    Key
	Rune   rune
	Width  int   // For EventResize
	Height int   // For EventResize
	Err    error // For EventError
}

// errInputClosed is returned by a backend Read on EOF
var errInputClosed = errors.New("input closed")

// inputReader handles raw stdin parsing
type inputReader struct {
	backend Backend
	eventCh chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool

	// Persistent buffer for stream assembly so partial UTF-8 and escape sequences survive read boundaries
	buf []byte
}

// escapeTimeout is the duration to wait after ESC to distinguish
// standalone ESC from escape sequence start
const escapeTimeout = 50 * time.Millisecond

// newInputReader creates a new input reader
func newInputReader(backend Backend) *inputReader {
	return &inputReader{
		backend: backend,
		eventCh: make(chan Event, 64),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		buf:     make([]byte, 0, 256),
	}
}

// start begins reading input in a goroutine
func (r *inputReader) start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	spawn(r.readLoop)
}

// stop signals the reader to stop
func (r *inputReader) stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	// Don't block forever if a read is stuck
	select {
	case <-r.doneCh:
	case <-time.After(200 * time.Millisecond):
	}
}

// events returns the event channel
func (r *inputReader) events() <-chan Event {
	return r.eventCh
}

// readLoop is the main input reading goroutine
func (r *inputReader) readLoop() {
	defer close(r.doneCh)
	defer close(r.eventCh)

	escPending := time.Time{}

	for {
		data, err := r.backend.Read(r.stopCh)
		if err != nil {
			if errors.Is(err, errInputClosed) {
				r.sendEvent(Event{Type: EventClosed})
			} else {
				r.sendEvent(Event{Type: EventError, Err: err})
			}
			return
		}

		select {
		case <-r.stopCh:
			return
		default:
		}

		if len(data) == 0 {
			// Poll timeout: a lone ESC older than escapeTimeout is a real Escape press
			if len(r.buf) == 1 && r.buf[0] == 0x1b && !escPending.IsZero() && time.Since(escPending) >= escapeTimeout {
				r.sendEvent(Event{Type: EventKey, Key: KeyEscape})
				r.buf = r.buf[:0]
				escPending = time.Time{}
			}
			continue
		}

		r.buf = append(r.buf, data...)
		consumed := r.parseInput(r.buf)

		if consumed >= len(r.buf) {
			r.buf = r.buf[:0]
		} else if consumed > 0 {
			copy(r.buf, r.buf[consumed:])
			r.buf = r.buf[:len(r.buf)-consumed]
		}

		if len(r.buf) == 1 && r.buf[0] == 0x1b {
			escPending = time.Now()
		} else {
			escPending = time.Time{}
		}
	}
}

// parseInput parses raw bytes into events and returns bytes consumed (stop on incomplete sequence)
func (r *inputReader) parseInput(data []byte) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		switch {
		case b >= 0x20 && b < 0x7f:
			r.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++

		case b == 0x1b:
			if i+1 >= n {
				return i // Wait for more data or the escape timeout
			}
			consumed := escapeLength(data[i:])
			if consumed == 0 {
				return i
			}
			if consumed == 1 {
				// ESC followed by an unrelated byte: standalone Escape
				r.sendEvent(Event{Type: EventKey, Key: KeyEscape})
			} else {
				r.sendEvent(Event{Type: EventKey, Key: KeyOther})
			}
			i += consumed

		case b == 0x7f:
			r.sendEvent(Event{Type: EventKey, Key: KeyBackspace})
			i++

		case b < 0x20:
			r.sendEvent(Event{Type: EventKey, Key: controlKey(b)})
			i++

		default:
			if !utf8.FullRune(data[i:]) {
				return i
			}
			rn, size := utf8.DecodeRune(data[i:])
			if rn != utf8.RuneError {
				r.sendEvent(Event{Type: EventKey, Key: KeyRune, Rune: rn})
			}
			i += size
		}
	}
	return i
}

// escapeLength returns the byte length of the escape sequence at data[0],
// 0 when more bytes are needed
func escapeLength(data []byte) int {
	if len(data) < 2 {
		return 0
	}

	switch data[1] {
	case '[':
		// CSI: parameters and intermediates until a final byte in 0x40-0x7e
		for j := 2; j < len(data); j++ {
			if data[j] >= 0x40 && data[j] <= 0x7e {
				return j + 1
			}
			if data[j] < 0x20 {
				return j
			}
		}
		return 0
	case 'O':
		// SS3: single final byte
		if len(data) < 3 {
			return 0
		}
		return 3
	case 0x1b:
		return 1
	}

	// Alt+key
	if data[1] >= 0x20 && data[1] < 0x7f {
		return 2
	}
	return 1
}

// sendEvent delivers without blocking the reader; the consumer only needs the latest keys
func (r *inputReader) sendEvent(ev Event) {
	select {
	case r.eventCh <- ev:
	case <-r.stopCh:
	default:
	}
}
