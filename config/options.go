package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Flag and config-file defaults
const (
	DefaultColor     = "green"
	DefaultSpeed     = 1.0
	DefaultDensity   = 0.1
	DefaultCharset   = "katakana"
	DefaultColorMode = "auto"
	DefaultBackend   = "ansi"
)

// Options is the raw, unvalidated user input
type Options struct {
	Color     string  `toml:"color"`
	Speed     float64 `toml:"speed"`
	Density   float64 `toml:"density"`
	Charset   string  `toml:"charset"`
	Seed      uint64  `toml:"seed"`
	ColorMode string  `toml:"color_mode"`
	Backend   string  `toml:"backend"`
	Sound     bool    `toml:"sound"`

	// Debug is command-line only
	Debug bool `toml:"-"`
}

// Defaults returns the built-in option set
func Defaults() Options {
	return Options{
		Color:     DefaultColor,
		Speed:     DefaultSpeed,
		Density:   DefaultDensity,
		Charset:   DefaultCharset,
		ColorMode: DefaultColorMode,
		Backend:   DefaultBackend,
	}
}

// DefaultPath returns the config file location under the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "matrix-rain", "config.toml")
}

// LoadFile decodes path over o. Keys absent from the file keep their current value.
// A missing file is not an error. Unknown keys are returned as warnings.
func LoadFile(path string, o *Options) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	// Decode into a copy so a malformed file leaves o untouched
	next := *o
	md, err := toml.DecodeFile(path, &next)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	*o = next

	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("config %s: unknown key %q ignored", path, key.String()))
	}
	return warnings, nil
}

// Override copies the fields of src whose flag name changed reports true
func (o *Options) Override(src Options, changed func(name string) bool) {
	if changed("color") {
		o.Color = src.Color
	}
	if changed("speed") {
		o.Speed = src.Speed
	}
	if changed("density") {
		o.Density = src.Density
	}
	if changed("charset") {
		o.Charset = src.Charset
	}
	if changed("seed") {
		o.Seed = src.Seed
	}
	if changed("color-mode") {
		o.ColorMode = src.ColorMode
	}
	if changed("backend") {
		o.Backend = src.Backend
	}
	if changed("sound") {
		o.Sound = src.Sound
	}
	o.Debug = src.Debug
}
