package backend

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/cursor"
	"github.com/dshills/textscreen/internal/video/hw"
	"github.com/dshills/textscreen/internal/video/screen"
)

// Control sequences.
const (
	csi          = "\x1b["
	altScreenOn  = "\x1b[?1049h"
	altScreenOff = "\x1b[?1049l"
	cursorHide   = "\x1b[?25l"
	cursorShow   = "\x1b[?25h"
	cursorSave   = "\x1b7"
	cursorLoad   = "\x1b8"
	resetAttrs   = "\x1b[0m"
	clearScreen  = "\x1b[2J"
	resetMargins = "\x1b[r"
)

// ANSI writes escape sequences to a stream. It diffs Live against Shadow,
// so it only emits cells the display does not already show, and it
// scrolls full-width areas with the terminal's scroll region.
type ANSI struct {
	out     *bufio.Writer
	fd      int // -1 when the stream is not a terminal
	palette core.Palette

	// Geometry of the last flushed frame. stale forces a full repaint.
	width, height int
	stale         bool
	started       bool
	closed        bool

	// Live grid of the last frame, read back when a scroll vacates rows.
	scr *screen.Buffer

	// Output state, to skip redundant sequences.
	col   core.Color
	colOK bool
	curX  int
	curY  int
	curOK bool

	mu sync.Mutex
}

// NewANSI creates a backend writing to w.
func NewANSI(w io.Writer, palette core.Palette) *ANSI {
	a := &ANSI{
		out:     bufio.NewWriterSize(w, 16*1024),
		fd:      -1,
		palette: palette,
		stale:   true,
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.fd = int(f.Fd())
	}
	return a
}

// IsTerminal reports whether the stream is a terminal.
func (a *ANSI) IsTerminal() bool {
	return a.fd >= 0
}

// Size returns the terminal size, or false when the stream is not a
// terminal.
func (a *ANSI) Size() (int, int, bool) {
	if a.fd < 0 {
		return 0, 0, false
	}
	w, h, err := term.GetSize(a.fd)
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}

// UsesShadow reports true: unchanged cells are skipped.
func (a *ANSI) UsesShadow() bool {
	return true
}

// Flush emits the damaged cells that differ from Shadow, and everything
// after a geometry change.
func (a *ANSI) Flush(f *hw.Frame, box hw.Damage) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if !a.started {
		a.out.WriteString(altScreenOn)
		a.started = true
	}

	a.scr = f.Screen
	w, h := f.Screen.Size()
	if w != a.width || h != a.height {
		a.width, a.height = w, h
		a.stale = true
	}

	a.out.WriteString(cursorHide)
	if a.stale {
		a.repaint()
		a.stale = false
	} else {
		for y := 0; y < h; y++ {
			for _, s := range f.Row(y) {
				if s.Valid() {
					a.drawRun(y, s.Start, min(s.End, w-1), true)
				}
			}
		}
		if r, ok := box.Rect().Clip(w, h); ok {
			for y := r.Up; y <= r.Down; y++ {
				a.drawRun(y, r.Left, r.Right, false)
			}
		}
	}
	a.placeCursor(f.Cursor, f.CursorType)
	return a.out.Flush()
}

// repaint clears the terminal and draws every non-blank cell.
func (a *ANSI) repaint() {
	a.setColor(core.DefaultColor)
	a.out.WriteString(clearScreen)
	a.curOK = false
	blank := core.Blank()
	for y := 0; y < a.height; y++ {
		row := a.scr.Row(y)
		for x := 0; x < a.width; x++ {
			if row[x] != blank {
				a.drawRun(y, x, x, false)
			}
		}
	}
}

// drawRun emits cells x0..x1 of row y. With skipSynced, cells whose live
// value equals the shadow are left alone.
func (a *ANSI) drawRun(y, x0, x1 int, skipSynced bool) {
	if x0 > 0 && a.scr.Cell(x0, y).Glyph() == 0 {
		x0--
	}
	for x := x0; x <= x1; x++ {
		c := a.scr.Cell(x, y)
		if c.Glyph() == 0 || (skipSynced && a.scr.Synced(x, y)) {
			continue
		}
		if !a.curOK || a.curX != x || a.curY != y {
			a.moveTo(x, y)
		}
		a.setColor(c.Color())
		a.out.WriteRune(c.Glyph())
		a.curX = x + 1
		if x+1 < a.width && a.scr.Cell(x+1, y).Glyph() == 0 {
			a.curX++
		}
	}
}

func (a *ANSI) moveTo(x, y int) {
	fmt.Fprintf(a.out, "%s%d;%dH", csi, y+1, x+1)
	a.curX, a.curY, a.curOK = x, y, true
}

func (a *ANSI) setColor(col core.Color) {
	if a.colOK && a.col == col {
		return
	}
	fr, fg, fb := a.palette.RGB(col.Fg())
	br, bg, bb := a.palette.RGB(col.Bg())
	fmt.Fprintf(a.out, "%s38;2;%d;%d;%d;48;2;%d;%d;%dm", csi, fr, fg, fb, br, bg, bb)
	a.col, a.colOK = col, true
}

func (a *ANSI) placeCursor(p core.Point, typ cursor.Type) {
	if typ.Style() == cursor.NoCursor || p.X < 0 || p.Y < 0 || p.X >= a.width || p.Y >= a.height {
		return
	}
	shape := 4 // steady underline
	if typ.Style() == cursor.SolidCursor {
		shape = 2 // steady block
	}
	fmt.Fprintf(a.out, "%s%d q", csi, shape)
	a.moveTo(p.X, p.Y)
	a.out.WriteString(cursorShow)
}

// CanDragNow reports true for vertical moves of full-width areas, once the
// terminal holds a complete frame of the current geometry.
func (a *ANSI) CanDragNow(src core.Rect, dstX, dstY int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return !a.closed && !a.stale && a.scr != nil &&
		src.Left == 0 && src.Right == a.width-1 && dstX == 0 &&
		dstY != src.Up && src.Up >= 0 && src.Down < a.height &&
		dstY >= 0 && dstY+src.Height() <= a.height
}

// DragArea scrolls the rows of src inside a scroll region, then redraws
// the source rows the scroll blanked but the destination does not cover.
func (a *ANSI) DragArea(src core.Rect, dstX, dstY int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if src.Left != 0 || src.Right != a.width-1 || dstX != 0 || a.scr == nil {
		return ErrNoDrag
	}

	h := src.Height()
	top, bottom := min(src.Up, dstY), max(src.Down, dstY+h-1)
	n := dstY - src.Up

	a.out.WriteString(cursorSave)
	fmt.Fprintf(a.out, "%s%d;%dr", csi, top+1, bottom+1)
	// Scrolled-in lines take the current background.
	a.setColor(core.DefaultColor)
	var vacated core.Rect
	if n < 0 {
		fmt.Fprintf(a.out, "%s%dS", csi, -n)
		vacated = core.NewRect(0, max(src.Up, dstY+h), a.width-1, src.Down)
	} else {
		fmt.Fprintf(a.out, "%s%dT", csi, n)
		vacated = core.NewRect(0, src.Up, a.width-1, min(src.Down, dstY-1))
	}
	a.out.WriteString(resetMargins)
	a.out.WriteString(cursorLoad)
	// DECRC restores the attributes too.
	a.curOK, a.colOK = false, false

	for y := vacated.Up; y <= vacated.Down; y++ {
		a.drawRun(y, 0, a.width-1, false)
	}
	return a.out.Flush()
}

// Cleanup resets the terminal state. Later calls do nothing.
func (a *ANSI) Cleanup() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	if !a.started {
		return nil
	}
	a.out.WriteString(resetMargins)
	a.out.WriteString(resetAttrs)
	a.out.WriteString(csi + "0 q")
	a.out.WriteString(cursorShow)
	a.out.WriteString(altScreenOff)
	return a.out.Flush()
}
