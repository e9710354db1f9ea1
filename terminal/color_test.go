package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBTo256(t *testing.T) {
	tests := []struct {
		name string
		in   RGB
		want uint8
	}{
		{"black", RGB{0, 0, 0}, 16},
		{"white", RGB{255, 255, 255}, 231},
		{"red", RGB{255, 0, 0}, 196},
		{"lime", RGB{0, 255, 0}, 46},
		{"mid gray", RGB{128, 128, 128}, 244},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RGBTo256(tt.in))
			// Second lookup hits the cache
			assert.Equal(t, tt.want, RGBTo256(tt.in))
		})
	}
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want ColorMode
	}{
		{"colorterm truecolor", map[string]string{"COLORTERM": "truecolor", "TERM": "xterm-256color"}, ColorModeTrueColor},
		{"kitty", map[string]string{"KITTY_WINDOW_ID": "1"}, ColorModeTrueColor},
		{"term direct", map[string]string{"TERM": "xterm-direct"}, ColorModeTrueColor},
		{"plain xterm", map[string]string{"TERM": "xterm-256color"}, ColorMode256},
		{"dumb", map[string]string{"TERM": "dumb", "COLORTERM": "truecolor"}, ColorModeMono},
		{"no color", map[string]string{"NO_COLOR": "1", "COLORTERM": "truecolor"}, ColorModeMono},
		{"empty", map[string]string{}, ColorMode256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectColorMode(func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColorMode(t *testing.T) {
	for in, want := range map[string]ColorMode{
		"truecolor": ColorModeTrueColor,
		"24bit":     ColorModeTrueColor,
		"256":       ColorMode256,
		"MONO":      ColorModeMono,
	} {
		got, err := ParseColorMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseColorMode("sepia")
	assert.Error(t, err)
}

func TestColorModeString(t *testing.T) {
	assert.Equal(t, "truecolor", ColorModeTrueColor.String())
	assert.Equal(t, "256", ColorMode256.String())
	assert.Equal(t, "mono", ColorModeMono.String())
}
