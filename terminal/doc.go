// Package terminal provides direct terminal control for full-screen animation.
//
// Features:
//   - True color (24-bit), 256-color palette and attribute-only mono output
//   - Double-buffered output with cell-level diffing
//   - Raw stdin input parsing, enough to recognise quit keys
//   - SIGWINCH resize detection
//   - Clean terminal restoration on exit/panic
//
// Two implementations satisfy Terminal: New emits ANSI sequences directly and
// bypasses terminfo; NewTcell delegates to tcell.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
