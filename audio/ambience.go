package audio

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)
	// speakerBuffer trades latency for underrun safety
	speakerBuffer = 100 * time.Millisecond

	bedVolume  = 0.18
	dripVolume = 0.25
	// MinDripGap rate-limits drips so dense rain does not turn into a tone
	MinDripGap = 60 * time.Millisecond
	// maxVoices caps concurrent drips in the mixer
	maxVoices = 8
)

// Player receives rain events
type Player interface {
	// Drip plays a drop for a stream spawned at pan in [-1, 1]
	Drip(pan float64)
	Close()
}

// Nop is a silent Player
type Nop struct{}

func (Nop) Drip(float64) {}
func (Nop) Close()       {}

// Ambience plays rain sounds through the system speaker
type Ambience struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	rng     *rand.Rand
	limiter limiter
	started bool
}

// NewAmbience creates a stopped ambience; seed drives pitch choice and noise
func NewAmbience(seed uint64) *Ambience {
	return &Ambience{
		mixer:   &beep.Mixer{},
		rng:     rand.New(rand.NewPCG(seed, seed>>1|1)),
		limiter: limiter{gap: MinDripGap, now: time.Now},
	}
}

// Start opens the audio device and begins the noise bed
func (a *Ambience) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(speakerBuffer)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}

	a.mixer.Add(newVolume(NewNoiseBed(sampleRate, a.rng), bedVolume))
	speaker.Play(a.mixer)
	a.started = true
	log.Printf("audio: started at %d Hz", sampleRate)
	return nil
}

// Drip queues a drop sound unless one played within MinDripGap
func (a *Ambience) Drip(pan float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started || !a.limiter.allow() {
		return
	}

	freq := dripScale[a.rng.IntN(len(dripScale))]
	drip := NewDrip(freq, pan, dripVolume, sampleRate)

	// Mixer is read by the speaker goroutine
	speaker.Lock()
	if a.mixer.Len() < maxVoices+1 {
		a.mixer.Add(drip)
	}
	speaker.Unlock()
}

// Close silences output and releases the device
func (a *Ambience) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return
	}
	speaker.Clear()
	speaker.Close()
	a.started = false
	log.Printf("audio: stopped")
}

// limiter admits at most one event per gap
type limiter struct {
	gap  time.Duration
	now  func() time.Time
	last time.Time
}

func (l *limiter) allow() bool {
	t := l.now()
	if !l.last.IsZero() && t.Sub(l.last) < l.gap {
		return false
	}
	l.last = t
	return true
}

// Start returns a started Ambience, or Nop when the device cannot be opened
func Start(seed uint64) Player {
	a := NewAmbience(seed)
	if err := a.Start(); err != nil {
		log.Printf("audio: %v, continuing without sound", err)
		return Nop{}
	}
	return a
}
