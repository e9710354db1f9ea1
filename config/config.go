package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/matrix-rain/rain"
	"github.com/lixenwraith/matrix-rain/terminal"
)

// BaseTick is the frame interval at speed 1.0
const BaseTick = 75 * time.Millisecond

// Clamp ranges
const (
	MinSpeed   = 0.25
	MaxSpeed   = 4.0
	MinDensity = 0.01
	MaxDensity = 1.0
)

// Backend selects the terminal implementation
type Backend string

const (
	BackendANSI  Backend = "ansi"
	BackendTcell Backend = "tcell"
)

// Config is the validated, immutable snapshot the program runs with
type Config struct {
	Color   string
	Palette rain.Palette
	Speed   float64
	Density float64
	Glyphs  []rune
	Seed    uint64

	ColorMode terminal.ColorMode
	// ColorModeForced is false when ColorMode came from detection
	ColorModeForced bool

	Backend Backend
	Sound   bool
	Debug   bool
}

// TickInterval is the frame period for the configured speed
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(BaseTick) / c.Speed)
}

// RainOptions converts the snapshot into waterfall options
func (c Config) RainOptions() rain.Options {
	return rain.Options{
		Palette:    c.Palette,
		Glyphs:     c.Glyphs,
		Density:    c.Density,
		GlitchRate: rain.DefaultGlitchRate,
		Mono:       c.ColorMode == terminal.ColorModeMono,
	}
}

// now is swapped in tests
var now = time.Now

// detectColorMode is swapped in tests
var detectColorMode = terminal.DetectColorMode

// Resolve validates o, returning the snapshot and a warning per corrected value
func Resolve(o Options) (Config, []string) {
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	c := Config{
		Color:   strings.ToLower(strings.TrimSpace(o.Color)),
		Speed:   o.Speed,
		Density: o.Density,
		Seed:    o.Seed,
		Sound:   o.Sound,
		Debug:   o.Debug,
	}

	palette, err := ParsePalette(o.Color)
	if err != nil {
		warnf("%v, using %s", err, DefaultColor)
		palette, _ = ParsePalette(DefaultColor)
		c.Color = DefaultColor
	}
	c.Palette = palette

	c.Speed = clamp(o.Speed, MinSpeed, MaxSpeed, DefaultSpeed, "speed", warnf)
	c.Density = clamp(o.Density, MinDensity, MaxDensity, DefaultDensity, "density", warnf)

	glyphs, ok := ParseCharset(o.Charset)
	if !ok {
		warnf("charset %q has no single-width glyphs, using %s", o.Charset, DefaultCharset)
		glyphs, _ = ParseCharset(DefaultCharset)
	}
	c.Glyphs = glyphs

	if c.Seed == 0 {
		c.Seed = uint64(now().UnixNano())
	}

	switch mode := strings.ToLower(strings.TrimSpace(o.ColorMode)); mode {
	case "", "auto":
		c.ColorMode = detectColorMode()
	default:
		m, err := terminal.ParseColorMode(mode)
		if err != nil {
			warnf("%v, detecting", err)
			c.ColorMode = detectColorMode()
			break
		}
		c.ColorMode = m
		c.ColorModeForced = true
	}

	switch b := Backend(strings.ToLower(strings.TrimSpace(o.Backend))); b {
	case BackendANSI, BackendTcell:
		c.Backend = b
	case "":
		c.Backend = BackendANSI
	default:
		warnf("unknown backend %q, using %s", o.Backend, BackendANSI)
		c.Backend = BackendANSI
	}

	return c, warnings
}

// clamp bounds v to [lo, hi]; NaN and non-positive values take def
func clamp(v, lo, hi, def float64, name string, warnf func(string, ...any)) float64 {
	switch {
	case v != v || v <= 0:
		warnf("%s %v invalid, using %v", name, v, def)
		return def
	case v < lo:
		warnf("%s %v below %v, clamped", name, v, lo)
		return lo
	case v > hi:
		warnf("%s %v above %v, clamped", name, v, hi)
		return hi
	}
	return v
}
