package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

var (
	spawnMu sync.RWMutex
	spawner = spawnRecovered
)

// SetSpawner routes the package's background goroutines (input reader, resize
// watcher, tcell event poll) through fn. nil restores the built-in launcher
func SetSpawner(fn func(func())) {
	spawnMu.Lock()
	defer spawnMu.Unlock()
	if fn == nil {
		fn = spawnRecovered
	}
	spawner = fn
}

func spawn(fn func()) {
	spawnMu.RLock()
	s := spawner
	spawnMu.RUnlock()
	s(fn)
}

// spawnRecovered resets the tty and exits if fn panics
func spawnRecovered(fn func()) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				EmergencyReset(os.Stdout)
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mterminal goroutine crashed: %v\x1b[0m\r\n", rec)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()
		fn()
	}()
}
