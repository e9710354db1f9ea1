package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveTriangle
)

// oscillator generates a fixed-length periodic wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a new oscillator for wave generation
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	if o.position >= o.duration {
		return 0, false
	}
	for i := range samples {
		if o.position >= o.duration {
			return i, true
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveTriangle:
			val = 4*math.Abs(o.phase-0.5) - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and exponential release to a stream
type envelope struct {
	streamer      beep.Streamer
	position      int
	attackSamples int
	// decay is the per-sample gain multiplier after the attack
	decay float64
	gain  float64
}

// NewEnvelope shapes s with a linear attack followed by an exponential tail
// that falls to about 1% of peak over release
func NewEnvelope(s beep.Streamer, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	rel := max(rate.N(release), 1)
	return &envelope{
		streamer:      s,
		attackSamples: rate.N(attack),
		decay:         math.Pow(0.01, 1/float64(rel)),
		gain:          1,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := e.gain
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		} else {
			e.gain *= e.decay
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s with linear gain vol; math.Log2(0) is -Inf so zero is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// noiseBed is endless low-passed noise with a slow amplitude swell
type noiseBed struct {
	rng   *rand.Rand
	rate  beep.SampleRate
	alpha float64
	lp    [2]float64
	pos   int
}

// Cutoff and swell period of the rain bed
const (
	bedCutoffHz = 900.0
	bedSwell    = 7 * time.Second
	// bedGain restores level lost to the low-pass
	bedGain = 2.5
)

// NewNoiseBed creates an endless stereo rain hiss
func NewNoiseBed(rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	dt := 1 / float64(rate)
	rc := 1 / (2 * math.Pi * bedCutoffHz)
	return &noiseBed{
		rng:   rng,
		rate:  rate,
		alpha: dt / (rc + dt),
	}
}

func (b *noiseBed) Stream(samples [][2]float64) (n int, ok bool) {
	period := float64(b.rate.N(bedSwell))
	for i := range samples {
		swell := 0.75 + 0.25*math.Sin(2*math.Pi*float64(b.pos)/period)
		for ch := 0; ch < 2; ch++ {
			white := b.rng.Float64()*2 - 1
			b.lp[ch] += b.alpha * (white - b.lp[ch])
			samples[i][ch] = clampSample(b.lp[ch] * bedGain * swell)
		}
		b.pos++
	}
	return len(samples), true
}

func (b *noiseBed) Err() error { return nil }

// Drip timing
const (
	dripDuration = 220 * time.Millisecond
	dripAttack   = 4 * time.Millisecond
	dripRelease  = 180 * time.Millisecond
)

// dripScale is a minor pentatonic run, in Hz
var dripScale = [...]float64{659.25, 783.99, 880.00, 987.77, 1174.66, 1318.51, 1567.98}

// NewDrip creates one short panned water-drop tone; pan runs -1 (left) to 1 (right)
func NewDrip(freq, pan, vol float64, rate beep.SampleRate) beep.Streamer {
	osc := NewOscillator(freq, dripDuration, WaveSine, rate)
	shaped := NewEnvelope(osc, dripAttack, dripRelease, rate)
	return &effects.Pan{Streamer: newVolume(shaped, vol), Pan: max(-1, min(1, pan))}
}

func clampSample(v float64) float64 {
	return max(-1, min(1, v))
}
