package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/cursor"
	"github.com/dshills/textscreen/internal/video/hw"
)

// Tcell draws the screen through a tcell.Screen. It never accelerates
// drags: tcell keeps its own back buffer and diffs it on Show.
type Tcell struct {
	screen  tcell.Screen
	palette core.Palette
	styles  map[core.Color]tcell.Style
	closed  bool
	mu      sync.Mutex
}

// NewTcell opens the controlling terminal.
func NewTcell(palette core.Palette) (*Tcell, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTcellScreen(s, palette)
}

// NewTcellScreen wraps an existing screen, initializing it.
func NewTcellScreen(s tcell.Screen, palette core.Palette) (*Tcell, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.EnableMouse()
	s.HideCursor()
	return &Tcell{
		screen:  s,
		palette: palette,
		styles:  make(map[core.Color]tcell.Style),
	}, nil
}

// Size returns the terminal size.
func (t *Tcell) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// Flush draws the damaged cells, places the cursor and shows the result.
func (t *Tcell) Flush(f *hw.Frame, box hw.Damage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	forEachSpan(f, box, func(y, x0, x1 int) {
		// Redraw the head of a wide glyph whose tail starts the span.
		if x0 > 0 && f.Screen.Cell(x0, y).Glyph() == 0 {
			x0--
		}
		for x := x0; x <= x1; x++ {
			c := f.Screen.Cell(x, y)
			g := c.Glyph()
			if g == 0 {
				continue
			}
			t.screen.SetContent(x, y, g, nil, t.style(c.Color()))
		}
	})

	t.placeCursor(f.Cursor, f.CursorType)
	t.screen.Show()
	return nil
}

func (t *Tcell) placeCursor(p core.Point, typ cursor.Type) {
	switch typ.Style() {
	case cursor.NoCursor:
		t.screen.HideCursor()
		return
	case cursor.SolidCursor:
		t.screen.SetCursorStyle(tcell.CursorStyleSteadyBlock)
	default:
		t.screen.SetCursorStyle(tcell.CursorStyleSteadyUnderline)
	}
	t.screen.ShowCursor(p.X, p.Y)
}

// style converts a packed color pair, caching the result.
func (t *Tcell) style(col core.Color) tcell.Style {
	if s, ok := t.styles[col]; ok {
		return s
	}
	fr, fg, fb := t.palette.RGB(col.Fg())
	br, bg, bb := t.palette.RGB(col.Bg())
	s := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(fr), int32(fg), int32(fb))).
		Background(tcell.NewRGBColor(int32(br), int32(bg), int32(bb)))
	t.styles[col] = s
	return s
}

// Cleanup restores the terminal. Later calls do nothing.
func (t *Tcell) Cleanup() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.screen.Fini()
	return nil
}

// CanDragNow always reports false.
func (t *Tcell) CanDragNow(core.Rect, int, int) bool {
	return false
}

// DragArea is never called by the dispatcher since CanDragNow is false.
func (t *Tcell) DragArea(core.Rect, int, int) error {
	return ErrNoDrag
}

// InputKind identifies an input event read from the terminal.
type InputKind int

const (
	InputNone InputKind = iota
	InputKey
	InputMouse
	InputResize
	InputInterrupt
	InputClosed
)

// Input is a terminal event reduced to what the server consumes.
type Input struct {
	Kind InputKind

	// Key events
	Rune rune
	Name string

	// Mouse events
	X, Y int

	// Resize events
	Width, Height int
}

// PollInput blocks for the next terminal event. It returns InputClosed
// once the screen is finalized.
func (t *Tcell) PollInput() Input {
	ev := t.screen.PollEvent()
	switch e := ev.(type) {
	case nil:
		return Input{Kind: InputClosed}
	case *tcell.EventKey:
		in := Input{Kind: InputKey, Name: keyName(e)}
		if e.Key() == tcell.KeyRune {
			in.Rune = e.Rune()
		}
		return in
	case *tcell.EventMouse:
		x, y := e.Position()
		return Input{Kind: InputMouse, X: x, Y: y}
	case *tcell.EventResize:
		w, h := e.Size()
		return Input{Kind: InputResize, Width: w, Height: h}
	case *tcell.EventInterrupt:
		return Input{Kind: InputInterrupt}
	default:
		return Input{Kind: InputNone}
	}
}

// Interrupt wakes a goroutine blocked in PollInput.
func (t *Tcell) Interrupt() {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; queue may be full
}

var keyNames = map[tcell.Key]string{
	tcell.KeyEscape:     "Esc",
	tcell.KeyEnter:      "Enter",
	tcell.KeyTab:        "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyPgUp:       "PgUp",
	tcell.KeyPgDn:       "PgDn",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyF5:         "F5",
	tcell.KeyCtrlC:      "Ctrl+C",
}

// keyName returns a stable name for the key; tcell's own names vary
// between releases.
func keyName(e *tcell.EventKey) string {
	if e.Key() == tcell.KeyRune {
		return "Rune[" + string(e.Rune()) + "]"
	}
	if name, ok := keyNames[e.Key()]; ok {
		return name
	}
	return e.Name()
}
