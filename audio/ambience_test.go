package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter(t *testing.T) {
	clock := time.Unix(100, 0)
	l := limiter{gap: MinDripGap, now: func() time.Time { return clock }}

	assert.True(t, l.allow())
	assert.False(t, l.allow())

	clock = clock.Add(MinDripGap / 2)
	assert.False(t, l.allow())

	clock = clock.Add(MinDripGap)
	assert.True(t, l.allow())
}

func TestAmbienceInactiveUntilStarted(t *testing.T) {
	a := NewAmbience(1)
	assert.NotPanics(t, func() {
		a.Drip(0)
		a.Close()
	})
	assert.Zero(t, a.mixer.Len())
}

func TestNopPlayer(t *testing.T) {
	var p Player = Nop{}
	assert.NotPanics(t, func() {
		p.Drip(1)
		p.Close()
	})
}
