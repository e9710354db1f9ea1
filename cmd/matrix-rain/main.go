// Command matrix-rain renders falling glyph streams in the terminal.
package main

import (
	"context"
	"os"

	"github.com/lixenwraith/matrix-rain/core"
)

func main() {
	// Panic Recovery: reset the terminal even if the main goroutine crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	code := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}
