package terminal

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFiniRestoresTerminal(t *testing.T) {
	b := newFakeBackend(8, 4)
	term := newWithBackend(b, ColorModeTrueColor)

	require.NoError(t, term.Init())
	out := b.output()
	assert.Contains(t, out, seqAltScreenEnter)
	assert.Contains(t, out, seqCursorHide)

	b.reset()
	term.Fini()
	out = b.output()
	assert.Contains(t, out, seqCursorShow)
	assert.Contains(t, out, seqAltScreenExit)
	assert.Equal(t, 1, b.finiCalls)

	// Idempotent
	term.Fini()
	assert.Equal(t, 1, b.finiCalls)
}

func TestFlushDropsStaleSize(t *testing.T) {
	b := newFakeBackend(4, 2)
	term := newWithBackend(b, ColorModeTrueColor)
	require.NoError(t, term.Init())
	defer term.Fini()

	b.reset()
	require.NoError(t, term.Flush(make([]Cell, 9), 3, 3))
	assert.Empty(t, b.output())

	cells := make([]Cell, 8)
	cells[0] = Cell{Rune: 'k'}
	require.NoError(t, term.Flush(cells, 4, 2))
	assert.Contains(t, b.output(), "k")
}

func TestFlushAfterFiniIsNoop(t *testing.T) {
	b := newFakeBackend(2, 2)
	term := newWithBackend(b, ColorModeTrueColor)
	require.NoError(t, term.Init())
	term.Fini()

	b.writeErr = errors.New("closed")
	assert.NoError(t, term.Flush(make([]Cell, 4), 2, 2))
}

func TestFlushSurfacesBrokenPipe(t *testing.T) {
	b := newFakeBackend(2, 2)
	term := newWithBackend(b, ColorModeTrueColor)
	require.NoError(t, term.Init())
	defer term.Fini()

	pipe := errors.New("broken pipe")
	b.writeErr = pipe
	cells := []Cell{{Rune: 'a'}, {Rune: 'b'}, {Rune: 'c'}, {Rune: 'd'}}
	assert.ErrorIs(t, term.Flush(cells, 2, 2), pipe)
}

func TestInitFailureLeavesTerminalUntouched(t *testing.T) {
	b := &failingInitBackend{fakeBackend: newFakeBackend(2, 2)}
	term := newWithBackend(b, ColorModeTrueColor)

	err := term.Init()
	require.ErrorIs(t, err, ErrNotTerminal)
	assert.Empty(t, b.output())

	// Fini on an uninitialised terminal must not touch the backend
	term.Fini()
	assert.Equal(t, 0, b.finiCalls)
}

type failingInitBackend struct {
	*fakeBackend
}

func (b *failingInitBackend) Init() error { return ErrNotTerminal }

func TestInitFailsWhenSetupWriteFails(t *testing.T) {
	b := newFakeBackend(4, 2)
	b.writeErr = errors.New("EIO")
	term := newWithBackend(b, ColorModeTrueColor)

	err := term.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, b.writeErr)
	// Raw mode was entered, so it must be left again
	assert.Equal(t, 1, b.initCalls)
	assert.Equal(t, 1, b.finiCalls)

	// Not initialized: Fini must not restore twice
	term.Fini()
	assert.Equal(t, 1, b.finiCalls)
}

// countingSpawner runs fns on plain goroutines and counts launches
func countingSpawner(t *testing.T) *atomic.Int32 {
	var n atomic.Int32
	SetSpawner(func(fn func()) {
		n.Add(1)
		go fn()
	})
	t.Cleanup(func() { SetSpawner(nil) })
	return &n
}

func TestInitLaunchesThroughSpawner(t *testing.T) {
	n := countingSpawner(t)

	b := newFakeBackend(4, 2)
	term := newWithBackend(b, ColorModeTrueColor)
	require.NoError(t, term.Init())
	defer term.Fini()

	assert.Equal(t, int32(1), n.Load())
}
