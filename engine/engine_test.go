package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/matrix-rain/config"
	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// fakeTerm records flushed frames in memory
type fakeTerm struct {
	mu       sync.Mutex
	width    int
	height   int
	flushes  int
	lastW    int
	lastH    int
	flushErr error
	syncs    int
	mode     terminal.ColorMode
	last     []terminal.Cell

	events  chan terminal.Event
	resizes chan terminal.ResizeEvent
}

func newFakeTerm(w, h int) *fakeTerm {
	return &fakeTerm{
		width:   w,
		height:  h,
		mode:    terminal.ColorModeTrueColor,
		events:  make(chan terminal.Event, 8),
		resizes: make(chan terminal.ResizeEvent, 1),
	}
}

func (f *fakeTerm) Init() error                             { return nil }
func (f *fakeTerm) Fini()                                   {}
func (f *fakeTerm) Size() (int, int)                        { return f.width, f.height }
func (f *fakeTerm) ResizeChan() <-chan terminal.ResizeEvent { return f.resizes }
func (f *fakeTerm) Events() <-chan terminal.Event           { return f.events }
func (f *fakeTerm) ColorMode() terminal.ColorMode           { return f.mode }

func (f *fakeTerm) Flush(cells []terminal.Cell, w, h int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flushErr != nil {
		return f.flushErr
	}
	if len(cells) != w*h {
		return errors.New("frame size mismatch")
	}
	f.flushes++
	f.lastW, f.lastH = w, h
	f.last = append(f.last[:0], cells...)
	return nil
}

func (f *fakeTerm) Sync() error {
	f.mu.Lock()
	f.syncs++
	f.mu.Unlock()
	return nil
}

func (f *fakeTerm) snapshot() (flushes, w, h, syncs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes, f.lastW, f.lastH, f.syncs
}

type countingPlayer struct{ drips atomic.Int32 }

func (p *countingPlayer) Drip(pan float64) {
	if pan >= -1 && pan <= 1 {
		p.drips.Add(1)
	}
}
func (p *countingPlayer) Close() {}

func testConfig() config.Config {
	return config.Config{
		Palette: rain.Solid(rain.DefaultColor),
		Speed:   1,
		Density: 0.5,
		Glyphs:  rain.DefaultGlyphs,
		Seed:    1,
	}
}

func newTestEngine(term *fakeTerm, player *countingPlayer) *Engine {
	var e *Engine
	if player != nil {
		e = New(term, testConfig(), player)
	} else {
		e = New(term, testConfig(), nil)
	}
	e.interval = time.Millisecond
	return e
}

func runAsync(e *Engine, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		require.FailNow(t, "engine did not stop")
		return nil
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	term := newFakeTerm(20, 10)
	e := newTestEngine(term, nil)
	assert.Equal(t, StateUninitialized, e.State())

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(e, ctx)

	require.Eventually(t, func() bool { return e.Frames() > 5 }, time.Second, time.Millisecond)
	assert.Equal(t, StateRunning, e.State())
	cancel()

	assert.NoError(t, waitDone(t, done))
	assert.Equal(t, StateExited, e.State())
	flushes, w, h, _ := term.snapshot()
	assert.Positive(t, flushes)
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)
}

func TestRunStopsOnQuitKeys(t *testing.T) {
	quits := []terminal.Event{
		{Type: terminal.EventKey, Key: terminal.KeyCtrlC},
		{Type: terminal.EventKey, Key: terminal.KeyEscape},
		{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'q'},
	}
	for _, ev := range quits {
		term := newFakeTerm(5, 5)
		e := newTestEngine(term, nil)
		done := runAsync(e, context.Background())

		// Ignored key first
		term.events <- terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'x'}
		term.events <- ev
		assert.NoError(t, waitDone(t, done))
		assert.Equal(t, StateExited, e.State())
	}
}

func TestRunStopsWhenInputCloses(t *testing.T) {
	term := newFakeTerm(5, 5)
	e := newTestEngine(term, nil)
	done := runAsync(e, context.Background())
	close(term.events)
	assert.NoError(t, waitDone(t, done))
}

func TestRunReturnsFlushError(t *testing.T) {
	errPipe := errors.New("broken pipe")
	term := newFakeTerm(5, 5)
	term.flushErr = errPipe
	e := newTestEngine(term, nil)

	err := waitDone(t, runAsync(e, context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, errPipe)
	assert.Equal(t, StateExited, e.State())
}

func TestRunHandlesResize(t *testing.T) {
	term := newFakeTerm(10, 10)
	e := newTestEngine(term, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(e, ctx)

	term.resizes <- terminal.ResizeEvent{Width: 30, Height: 4}
	require.Eventually(t, func() bool {
		_, w, h, _ := term.snapshot()
		return w == 30 && h == 4
	}, time.Second, time.Millisecond)

	term.events <- terminal.Event{Type: terminal.EventResize, Width: 0, Height: 0}
	require.Eventually(t, func() bool {
		_, w, h, _ := term.snapshot()
		return w == 0 && h == 0
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, waitDone(t, done))
}

func TestRunRedrawKey(t *testing.T) {
	term := newFakeTerm(5, 5)
	e := newTestEngine(term, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(e, ctx)

	term.events <- terminal.Event{Type: terminal.EventKey, Key: terminal.KeyCtrlL}
	require.Eventually(t, func() bool {
		_, _, _, syncs := term.snapshot()
		return syncs == 1
	}, time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, waitDone(t, done))
}

func TestRunOnlyOnce(t *testing.T) {
	term := newFakeTerm(5, 5)
	e := newTestEngine(term, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, e.Run(ctx))
	assert.ErrorIs(t, e.Run(ctx), ErrAlreadyStarted)
}

func TestSpawnTriggersDrip(t *testing.T) {
	term := newFakeTerm(40, 3)
	player := &countingPlayer{}
	e := newTestEngine(term, player)
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(e, ctx)

	require.Eventually(t, func() bool { return player.drips.Load() > 0 }, time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, waitDone(t, done))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "exited", StateExited.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestStatsCounted(t *testing.T) {
	term := newFakeTerm(30, 4)
	e := newTestEngine(term, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(e, ctx)

	require.Eventually(t, func() bool {
		return e.Stats().Counters.Get("rain.spawned").Load() > 0
	}, time.Second, time.Millisecond)
	term.resizes <- terminal.ResizeEvent{Width: 10, Height: 4}
	require.Eventually(t, func() bool {
		return e.Stats().Counters.Get("engine.resizes").Load() == 1
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, waitDone(t, done))
	assert.Equal(t, e.Frames(), e.Stats().Counters.Get("engine.frames").Load())
	assert.Contains(t, e.Stats().Summary(), "rain.removed=")
}

func TestRunFollowsTerminalMonoMode(t *testing.T) {
	term := newFakeTerm(20, 10)
	term.mode = terminal.ColorModeMono
	e := newTestEngine(term, nil)
	require.NotEqual(t, terminal.ColorModeMono, e.cfg.ColorMode)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(e, ctx)
	require.Eventually(t, func() bool { return e.Frames() > 5 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, waitDone(t, done))

	term.mu.Lock()
	defer term.mu.Unlock()
	white := terminal.RGB{R: 255, G: 255, B: 255}
	styled := 0
	for _, c := range term.last {
		if c.Rune == ' ' || c.Rune == 0 {
			continue
		}
		// Mono frames carry brightness in attributes, not in color
		assert.Equal(t, white, c.Fg, "lit cell %q is colored", c.Rune)
		if c.Attrs&(terminal.AttrBold|terminal.AttrDim) != 0 {
			styled++
		}
	}
	assert.Positive(t, styled)
}
