package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/matrix-rain/audio"
	"github.com/lixenwraith/matrix-rain/config"
	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/status"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// ErrAlreadyStarted is returned by Run on an engine that already ran
var ErrAlreadyStarted = errors.New("engine already started")

// Engine drives the waterfall on a fixed tick and pushes frames to the terminal
// All waterfall access happens on the Run goroutine
type Engine struct {
	term     terminal.Terminal
	cfg      config.Config
	player   audio.Player
	interval time.Duration

	state atomic.Int32

	stats       *status.Registry
	statFrames  *atomic.Uint64
	statSpawned *atomic.Uint64
	statRemoved *atomic.Uint64
	statResizes *atomic.Uint64
	statStreams *atomic.Int64

	rain   *rain.Waterfall
	frame  []terminal.Cell
	width  int
	height int
}

// New creates an engine; player may be nil for silence
func New(term terminal.Terminal, cfg config.Config, player audio.Player) *Engine {
	if player == nil {
		player = audio.Nop{}
	}
	stats := status.NewRegistry()
	return &Engine{
		term:        term,
		cfg:         cfg,
		player:      player,
		interval:    cfg.TickInterval(),
		stats:       stats,
		statFrames:  stats.Counters.Get("engine.frames"),
		statSpawned: stats.Counters.Get("rain.spawned"),
		statRemoved: stats.Counters.Get("rain.removed"),
		statResizes: stats.Counters.Get("engine.resizes"),
		statStreams: stats.Gauges.Get("rain.streams"),
	}
}

// Stats returns the run counters
func (e *Engine) Stats() *status.Registry {
	return e.stats
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Frames returns the number of frames flushed
func (e *Engine) Frames() uint64 {
	return e.statFrames.Load()
}

// Run animates until ctx is cancelled, a quit key arrives, input ends, or output fails.
// The terminal must already be initialized; Run does not call Fini.
func (e *Engine) Run(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(StateUninitialized), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	defer e.state.Store(int32(StateExited))

	w, h := e.term.Size()
	opts := e.cfg.RainOptions()
	// The terminal knows the final mode; tcell detects its own
	opts.Mono = e.term.ColorMode() == terminal.ColorModeMono
	opts.OnSpawn = e.onSpawn
	e.allocFrame(w, h)
	e.rain = rain.New(w, h, opts, rain.NewRand(e.cfg.Seed))
	log.Printf("engine: running %dx%d tick=%v seed=%d", w, h, e.interval, e.cfg.Seed)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	events := e.term.Events()
	resizes := e.term.ResizeChan()

	if err := e.render(); err != nil {
		return e.terminate(err)
	}

	for {
		select {
		case <-ctx.Done():
			return e.terminate(nil)

		case ev, ok := <-events:
			if !ok {
				log.Printf("engine: input closed")
				return e.terminate(nil)
			}
			if stop, err := e.handleEvent(ev); stop || err != nil {
				return e.terminate(err)
			}

		case rs := <-resizes:
			e.resize(rs.Width, rs.Height)

		case <-ticker.C:
			ts := e.rain.Tick()
			e.statSpawned.Add(uint64(ts.Spawned))
			e.statRemoved.Add(uint64(ts.Removed))
			e.statStreams.Store(int64(e.rain.StreamCount()))
			if err := e.render(); err != nil {
				return e.terminate(err)
			}
		}
	}
}

func (e *Engine) terminate(err error) error {
	e.state.Store(int32(StateTerminating))
	if err != nil {
		log.Printf("engine: stopping: %v", err)
	} else {
		log.Printf("engine: stopping, %s", e.stats.Summary())
	}
	return err
}

// handleEvent reports whether the loop should stop
func (e *Engine) handleEvent(ev terminal.Event) (bool, error) {
	switch ev.Type {
	case terminal.EventKey:
		if ev.IsQuit() {
			return true, nil
		}
		if ev.Key == terminal.KeyCtrlL {
			if err := e.term.Sync(); err != nil {
				return true, fmt.Errorf("redraw: %w", err)
			}
			return false, e.render()
		}
	case terminal.EventResize:
		e.resize(ev.Width, ev.Height)
	case terminal.EventError:
		log.Printf("engine: input error: %v", ev.Err)
	case terminal.EventClosed:
		return true, nil
	}
	return false, nil
}

// resize rebuilds the grid; the next tick redraws it
func (e *Engine) resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if w == e.width && h == e.height {
		return
	}
	log.Printf("engine: resize %dx%d -> %dx%d", e.width, e.height, w, h)
	e.rain.Resize(w, h)
	e.allocFrame(w, h)
	e.statResizes.Add(1)
}

func (e *Engine) allocFrame(w, h int) {
	e.width, e.height = max(w, 0), max(h, 0)
	e.frame = make([]terminal.Cell, e.width*e.height)
}

// render composes and flushes one frame
func (e *Engine) render() error {
	e.rain.Draw(e.frame)
	if err := e.term.Flush(e.frame, e.width, e.height); err != nil {
		return fmt.Errorf("flush frame %d: %w", e.statFrames.Load(), err)
	}
	e.statFrames.Add(1)
	return nil
}

// onSpawn pans a drip by column position
func (e *Engine) onSpawn(column int) {
	if e.width <= 1 {
		e.player.Drip(0)
		return
	}
	e.player.Drip(2*float64(column)/float64(e.width-1) - 1)
}
