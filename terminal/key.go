package terminal

// Key represents a parsed input key
type Key uint16

const (
	KeyNone Key = iota
	KeyRune     // Printable character (check Event.Rune)

	// Control keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace

	// Ctrl+letter the animation reacts to
	KeyCtrlC
	KeyCtrlD
	KeyCtrlL
	KeyCtrlZ

	// KeyOther is any key without a dedicated constant (arrows, F-keys, other Ctrl combos)
	KeyOther
)

// IsQuit reports whether the event asks the animation to stop
func (e Event) IsQuit() bool {
	if e.Type != EventKey {
		return false
	}
	switch e.Key {
	case KeyCtrlC, KeyCtrlD, KeyEscape:
		return true
	case KeyRune:
		return e.Rune == 'q' || e.Rune == 'Q'
	}
	return false
}

// controlKey maps a C0 control byte to a Key
func controlKey(b byte) Key {
	switch b {
	case 0x03:
		return KeyCtrlC
	case 0x04:
		return KeyCtrlD
	case 0x09:
		return KeyTab
	case 0x0a, 0x0d:
		return KeyEnter
	case 0x0c:
		return KeyCtrlL
	case 0x1a:
		return KeyCtrlZ
	case 0x08:
		return KeyBackspace
	}
	return KeyOther
}
