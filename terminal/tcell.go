package terminal

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// tcellTerm implements Terminal on top of tcell, for terminals where the
// hand-rolled ANSI path misbehaves; tcell resolves capabilities via terminfo
type tcellTerm struct {
	screen    tcell.Screen
	colorMode ColorMode
	forced    bool

	resizeCh chan ResizeEvent
	eventCh  chan Event
	quitCh   chan struct{}
	doneCh   chan struct{}

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// NewTcell creates a Terminal backed by a tcell screen
// A ColorModeMono or ColorMode256 request is honored; auto-detected modes defer to tcell's terminfo
func NewTcell(colorMode ColorMode, forced bool) (Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("tcell screen: %w", err)
	}
	return newTcellWithScreen(screen, colorMode, forced), nil
}

func newTcellWithScreen(screen tcell.Screen, colorMode ColorMode, forced bool) *tcellTerm {
	return &tcellTerm{
		screen:    screen,
		colorMode: colorMode,
		forced:    forced,
		resizeCh:  make(chan ResizeEvent, 1),
		eventCh:   make(chan Event, 64),
		quitCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (t *tcellTerm) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("tcell init: %w", err)
	}

	if !t.forced {
		switch colors := t.screen.Colors(); {
		case colors >= 1<<24:
			t.colorMode = ColorModeTrueColor
		case colors >= 256:
			t.colorMode = ColorMode256
		default:
			t.colorMode = ColorModeMono
		}
	}

	t.screen.HideCursor()
	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	t.screen.Clear()

	spawn(t.pollLoop)

	t.initialized = true
	return nil
}

// pollLoop converts tcell events until Fini
func (t *tcellTerm) pollLoop() {
	defer close(t.doneCh)
	defer close(t.eventCh)

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			// Screen finalized
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			select {
			case <-t.resizeCh:
			default:
			}
			select {
			case t.resizeCh <- ResizeEvent{Width: w, Height: h}:
			default:
			}
		case *tcell.EventKey:
			t.send(translateTcellKey(ev))
		case *tcell.EventError:
			t.send(Event{Type: EventError, Err: ev})
		}
	}
}

func (t *tcellTerm) send(ev Event) {
	select {
	case t.eventCh <- ev:
	case <-t.quitCh:
	default:
	}
}

// translateTcellKey maps the tcell keys the animation cares about onto Event
func translateTcellKey(ev *tcell.EventKey) Event {
	out := Event{Type: EventKey}
	switch ev.Key() {
	case tcell.KeyRune:
		out.Key = KeyRune
		out.Rune = ev.Rune()
	case tcell.KeyEscape:
		out.Key = KeyEscape
	case tcell.KeyEnter:
		out.Key = KeyEnter
	case tcell.KeyTab:
		out.Key = KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		out.Key = KeyBackspace
	case tcell.KeyCtrlC:
		out.Key = KeyCtrlC
	case tcell.KeyCtrlD:
		out.Key = KeyCtrlD
	case tcell.KeyCtrlL:
		out.Key = KeyCtrlL
	case tcell.KeyCtrlZ:
		out.Key = KeyCtrlZ
	default:
		out.Key = KeyOther
	}
	return out
}

func (t *tcellTerm) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}
	close(t.quitCh)
	t.screen.Fini()
	<-t.doneCh
	t.finalized = true
}

func (t *tcellTerm) Size() (int, int) {
	return t.screen.Size()
}

func (t *tcellTerm) ResizeChan() <-chan ResizeEvent {
	return t.resizeCh
}

func (t *tcellTerm) Events() <-chan Event {
	return t.eventCh
}

func (t *tcellTerm) ColorMode() ColorMode {
	return t.colorMode
}

// Flush copies cells into tcell's back buffer; tcell performs its own diffing on Show
func (t *tcellTerm) Flush(cells []Cell, width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return nil
	}
	if len(cells) < width*height {
		return nil
	}

	for y := 0; y < height; y++ {
		row := cells[y*width : (y+1)*width]
		for x, c := range row {
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			t.screen.SetContent(x, y, r, nil, t.style(c))
		}
	}
	t.screen.Show()
	return nil
}

func (t *tcellTerm) style(c Cell) tcell.Style {
	style := tcell.StyleDefault
	switch t.colorMode {
	case ColorModeTrueColor:
		style = style.
			Foreground(tcell.NewRGBColor(int32(c.Fg.R), int32(c.Fg.G), int32(c.Fg.B))).
			Background(tcell.NewRGBColor(int32(c.Bg.R), int32(c.Bg.G), int32(c.Bg.B)))
	case ColorMode256:
		style = style.
			Foreground(tcell.PaletteColor(int(RGBTo256(c.Fg)))).
			Background(tcell.PaletteColor(int(RGBTo256(c.Bg))))
	}
	if c.Attrs&AttrBold != 0 {
		style = style.Bold(true)
	}
	if c.Attrs&AttrDim != 0 {
		style = style.Dim(true)
	}
	return style
}

func (t *tcellTerm) Sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return nil
	}
	t.screen.Sync()
	return nil
}
