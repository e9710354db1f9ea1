// Package config resolves user options into the immutable snapshot the
// animation runs with.
//
// Options come from three layers, later ones winning: built-in defaults,
// an optional TOML file, and explicitly set command-line flags. Resolve
// never fails; out-of-range or unknown values are clamped or replaced by
// defaults and reported as warnings.
package config
