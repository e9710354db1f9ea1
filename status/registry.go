// Package status holds run counters shared between the animation loop and its observers
package status

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Registry is the central counter facade
// The engine caches pointers at start; the loop writes directly to atomics
type Registry struct {
	Counters *MetricMap[atomic.Uint64]
	Gauges   *MetricMap[atomic.Int64]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Uint64](),
		Gauges:   NewMetricMap[atomic.Int64](),
	}
}

// Summary renders every metric as sorted key=value pairs
func (r *Registry) Summary() string {
	var parts []string
	r.Counters.Range(func(key string, v *atomic.Uint64) {
		parts = append(parts, fmt.Sprintf("%s=%d", key, v.Load()))
	})
	r.Gauges.Range(func(key string, v *atomic.Int64) {
		parts = append(parts, fmt.Sprintf("%s=%d", key, v.Load()))
	})
	return strings.Join(parts, " ")
}
