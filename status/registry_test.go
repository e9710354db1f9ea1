package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricMapGetReturnsSamePointer(t *testing.T) {
	r := NewRegistry()
	a := r.Counters.Get("frames")
	b := r.Counters.Get("frames")
	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Counters.Count())
}

func TestMetricMapConcurrentGet(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Counters.Get("spawned").Add(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(16), r.Counters.Get("spawned").Load())
}

func TestSummarySorted(t *testing.T) {
	r := NewRegistry()
	r.Counters.Get("rain.spawned").Store(3)
	r.Counters.Get("engine.frames").Store(10)
	r.Gauges.Get("rain.streams").Store(-1)
	assert.Equal(t, "engine.frames=10 rain.spawned=3 rain.streams=-1", r.Summary())
	assert.Empty(t, NewRegistry().Summary())
}
