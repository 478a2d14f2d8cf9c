package backend

import (
	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/cursor"
	"github.com/dshills/textscreen/internal/video/hw"
	"github.com/dshills/textscreen/internal/video/screen"
)

// Drag is one recorded DragArea call.
type Drag struct {
	Src        core.Rect
	DstX, DstY int
}

// Null draws into an in-memory mirror and records every call. It is the
// headless backend and the reference other backends are tested against.
type Null struct {
	// CanDrag is returned by CanDragNow.
	CanDrag bool
	// Shadow is returned by UsesShadow.
	Shadow bool

	Flushes  []hw.Damage
	Drags    []Drag
	Cleanups int
	Drawn    int // cells drawn by the last flush

	Cursor     core.Point
	CursorType cursor.Type

	mirror *screen.Buffer
}

// NewNull creates a Null backend with a mirror of the given size.
func NewNull(width, height int) *Null {
	return &Null{mirror: screen.New(width, height)}
}

// Mirror returns what the backend believes is on the display.
func (n *Null) Mirror() *screen.Buffer {
	return n.mirror
}

// Flush copies the damaged cells of the frame into the mirror.
func (n *Null) Flush(f *hw.Frame, box hw.Damage) error {
	if n.mirror == nil {
		n.mirror = screen.New(f.Screen.Size())
	}
	w, h := f.Screen.Size()
	if mw, mh := n.mirror.Size(); mw != w || mh != h {
		n.mirror.Resize(w, h)
	}

	n.Flushes = append(n.Flushes, box)
	n.Drawn = 0
	forEachSpan(f, box, func(y, x0, x1 int) {
		for x := x0; x <= x1; x++ {
			n.mirror.SetCell(x, y, f.Screen.Cell(x, y))
		}
		n.Drawn += x1 - x0 + 1
	})
	n.Cursor = f.Cursor
	n.CursorType = f.CursorType
	return nil
}

// Cleanup counts the call.
func (n *Null) Cleanup() error {
	n.Cleanups++
	return nil
}

// CanDragNow returns the CanDrag field.
func (n *Null) CanDragNow(core.Rect, int, int) bool {
	return n.CanDrag
}

// DragArea moves the mirror cells the way the display would.
func (n *Null) DragArea(src core.Rect, dstX, dstY int) error {
	n.Drags = append(n.Drags, Drag{Src: src, DstX: dstX, DstY: dstY})
	if n.mirror != nil {
		n.mirror.Move(src, dstX, dstY)
	}
	return nil
}

// UsesShadow returns the Shadow field.
func (n *Null) UsesShadow() bool {
	return n.Shadow
}

// Reset forgets the recorded calls, keeping the mirror.
func (n *Null) Reset() {
	n.Flushes = nil
	n.Drags = nil
	n.Cleanups = 0
	n.Drawn = 0
}
