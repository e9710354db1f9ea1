package terminal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan Event, n int) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestParseInputKeys(t *testing.T) {
	r := newInputReader(newFakeBackend(10, 10))

	consumed := r.parseInput([]byte("q\x03\x1b[A\r"))
	assert.Equal(t, 6, consumed)

	evs := collect(t, r.events(), 4)
	require.Len(t, evs, 4)
	assert.Equal(t, Event{Type: EventKey, Key: KeyRune, Rune: 'q'}, evs[0])
	assert.Equal(t, KeyCtrlC, evs[1].Key)
	assert.Equal(t, KeyOther, evs[2].Key)
	assert.Equal(t, KeyEnter, evs[3].Key)
}

func TestParseInputWaitsForIncompleteSequences(t *testing.T) {
	r := newInputReader(newFakeBackend(10, 10))

	// Lone ESC and a truncated CSI are held back
	assert.Equal(t, 0, r.parseInput([]byte{0x1b}))
	assert.Equal(t, 0, r.parseInput([]byte("\x1b[1;")))

	// First two bytes of a three-byte rune
	kana := []byte("ｱ")
	require.Len(t, kana, 3)
	assert.Equal(t, 0, r.parseInput(kana[:2]))
	assert.Equal(t, 3, r.parseInput(kana))

	evs := collect(t, r.events(), 1)
	assert.Equal(t, 'ｱ', evs[0].Rune)
}

func TestReaderEmitsEscapeAfterTimeout(t *testing.T) {
	b := newFakeBackend(10, 10)
	r := newInputReader(b)
	r.start()
	defer r.stop()

	b.input <- []byte{0x1b}
	// Empty reads model poll timeouts
	go func() {
		for range 10 {
			time.Sleep(20 * time.Millisecond)
			select {
			case b.input <- nil:
			default:
			}
		}
	}()

	evs := collect(t, r.events(), 1)
	require.Len(t, evs, 1)
	assert.Equal(t, KeyEscape, evs[0].Key)
	assert.True(t, evs[0].IsQuit())
}

func TestReaderClosesOnEOF(t *testing.T) {
	b := newFakeBackend(10, 10)
	r := newInputReader(b)
	r.start()
	defer r.stop()

	close(b.input)

	evs := collect(t, r.events(), 2)
	require.Len(t, evs, 1)
	assert.Equal(t, EventClosed, evs[0].Type)
}

func TestIsQuit(t *testing.T) {
	assert.True(t, Event{Type: EventKey, Key: KeyCtrlC}.IsQuit())
	assert.True(t, Event{Type: EventKey, Key: KeyRune, Rune: 'Q'}.IsQuit())
	assert.False(t, Event{Type: EventKey, Key: KeyRune, Rune: 'x'}.IsQuit())
	assert.False(t, Event{Type: EventResize}.IsQuit())
}
