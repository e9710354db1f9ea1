package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHelpExitsZero(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		code, out, errOut := runCLI(t, flag)
		assert.Equal(t, exitOK, code, flag)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "--color")
		assert.Contains(t, out, "--speed")
		assert.Empty(t, errOut)
		// Usage only, no escape sequences from a started renderer
		assert.NotContains(t, out, "\x1b[")
	}
}

func TestListExitsZero(t *testing.T) {
	code, out, _ := runCLI(t, "--list")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "green")
	assert.Contains(t, out, "rainbow")
	assert.Contains(t, out, "katakana")
	assert.Contains(t, out, "monokai")
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	code, _, errOut := runCLI(t, "--no-such-flag")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "no-such-flag")
	assert.Contains(t, errOut, "--help")
}

func TestPositionalArgsRejected(t *testing.T) {
	code, _, errOut := runCLI(t, "extra")
	assert.Equal(t, exitUsage, code)
	assert.NotEmpty(t, errOut)
}

func TestMalformedFlagValue(t *testing.T) {
	code, _, _ := runCLI(t, "--speed", "fast")
	assert.Equal(t, exitUsage, code)
}
