// Package hw coordinates the display backends that share one logical screen.
//
// Every backend implements the same four capabilities: flush damage,
// clean up on the panic path, report whether it can move an area right
// now, and move it. The Dispatcher holds the attached backends in
// registration order and walks them sequentially.
package hw

import (
	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/cursor"
	"github.com/dshills/textscreen/internal/video/dirty"
	"github.com/dshills/textscreen/internal/video/screen"
)

// Backend is a display target.
type Backend interface {
	// Flush pushes changed cells to the display. The frame carries the
	// per-row damage of the core, box the backend's own pending area.
	// Backends read the frame; they never write to it.
	Flush(f *Frame, box Damage) error

	// Cleanup restores the display on shutdown or on a fatal signal.
	// It must be safe to call more than once.
	Cleanup() error

	// CanDragNow reports whether the backend can move src to
	// (dstX, dstY) natively in its current state.
	CanDragNow(src core.Rect, dstX, dstY int) bool

	// DragArea moves src to (dstX, dstY) on the display.
	DragArea(src core.Rect, dstX, dstY int) error
}

// ShadowUser is implemented by backends that diff Live against Shadow
// when flushing. The core keeps Shadow current only if one asks for it.
type ShadowUser interface {
	UsesShadow() bool
}

// Frame is the read-only view of the core handed to Flush.
type Frame struct {
	Screen     *screen.Buffer
	Rows       []dirty.Row
	Cursor     core.Point
	CursorType cursor.Type
}

// HasRows reports whether any row carries damage.
func (f *Frame) HasRows() bool {
	for _, r := range f.Rows {
		if r.IsDirty() {
			return true
		}
	}
	return false
}

// Row returns the damage of row y, clean if the frame has none.
func (f *Frame) Row(y int) dirty.Row {
	if y < 0 || y >= len(f.Rows) {
		return dirty.EmptyRow()
	}
	return f.Rows[y]
}

// Damage is a backend's pending redraw area: a bounding box, not an
// interval set, so a backend may redraw more than strictly needed.
type Damage struct {
	Left, Up, Right, Down int
	Pending               bool
}

// Add grows the box to include r. Empty rects are ignored.
func (d *Damage) Add(r core.Rect) {
	if r.IsEmpty() {
		return
	}
	if !d.Pending {
		*d = Damage{Left: r.Left, Up: r.Up, Right: r.Right, Down: r.Down, Pending: true}
		return
	}
	d.Left = min(d.Left, r.Left)
	d.Up = min(d.Up, r.Up)
	d.Right = max(d.Right, r.Right)
	d.Down = max(d.Down, r.Down)
}

// Rect returns the box as a rect, empty when nothing is pending.
func (d Damage) Rect() core.Rect {
	if !d.Pending {
		return core.Rect{Left: 0, Up: 0, Right: -1, Down: -1}
	}
	return core.NewRect(d.Left, d.Up, d.Right, d.Down)
}

// Reset clears the box.
func (d *Damage) Reset() {
	*d = Damage{}
}
