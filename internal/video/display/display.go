// Package display is the owning context of the video core.
//
// A Display ties together the cell grids, the per-row damage, the cursor
// and the attached backends. Every operation runs on the caller's
// goroutine and never blocks except inside backend calls.
package display

import (
	"log/slog"

	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/cursor"
	"github.com/dshills/textscreen/internal/video/dirty"
	"github.com/dshills/textscreen/internal/video/hw"
	"github.com/dshills/textscreen/internal/video/screen"
)

// Default geometry used before the first resize.
const (
	DefaultWidth  = 100
	DefaultHeight = 30
)

// Display owns the video state of one logical screen.
type Display struct {
	buf     *screen.Buffer
	tracker *dirty.Tracker
	cursor  *cursor.State
	hw      *hw.Dispatcher
	logger  *slog.Logger
}

// Option configures a Display.
type Option func(*Display)

// WithLogger sets the logger used by the display and its dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(d *Display) {
		d.logger = l
	}
}

// New creates a display of the given size. Non-positive dimensions fall
// back to the defaults.
func New(width, height int, opts ...Option) *Display {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	d := &Display{
		buf:     screen.New(width, height),
		tracker: dirty.NewTracker(width, height),
		cursor:  cursor.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	d.hw = hw.NewDispatcher(d.logger)
	return d
}

// Screen returns the cell grids.
func (d *Display) Screen() *screen.Buffer { return d.buf }

// Tracker returns the per-row damage tracker.
func (d *Display) Tracker() *dirty.Tracker { return d.tracker }

// Cursor returns the cursor state.
func (d *Display) Cursor() *cursor.State { return d.cursor }

// HW returns the backend dispatcher.
func (d *Display) HW() *hw.Dispatcher { return d.hw }

// Size returns the screen dimensions.
func (d *Display) Size() (width, height int) {
	return d.buf.Size()
}

// DirtyVideo records damage on the inclusive rectangle. Call it before
// changing the cells.
func (d *Display) DirtyVideo(xStart, yStart, xEnd, yEnd int) {
	d.tracker.MarkDirty(xStart, yStart, xEnd, yEnd)
}

// FillVideo fills a rect with a cell and marks it dirty.
func (d *Display) FillVideo(r core.Rect, c core.Cell) {
	d.tracker.MarkDirty(r.Left, r.Up, r.Right, r.Down)
	d.buf.Fill(r, c)
}

// WriteString writes s at (x, y) and marks the written cells dirty.
func (d *Display) WriteString(x, y int, s string, col core.Color) {
	r := d.buf.WriteString(x, y, s, col)
	d.tracker.MarkDirty(r.Left, r.Up, r.Right, r.Down)
}

// NeedRedrawVideo asks every backend to redraw r on the next flush,
// regardless of the row damage.
func (d *Display) NeedRedrawVideo(r core.Rect) {
	d.hw.AccumulateAll(r)
}

// RefreshVideo marks the whole screen dirty.
func (d *Display) RefreshVideo() {
	d.tracker.MarkAll()
}

// MoveToXY sets the logical cursor position.
func (d *Display) MoveToXY(x, y int) {
	d.cursor.MoveTo(x, y)
}

// SetCursorType sets the normalized cursor type.
func (d *Display) SetCursorType(t cursor.Type) {
	d.cursor.SetType(t)
}

// Resize reallocates the grids and the damage rows for a new geometry and
// marks everything dirty.
func (d *Display) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		d.logger.Warn("ignoring resize", "width", width, "height", height)
		return
	}
	d.buf.Resize(width, height)
	d.tracker.Resize(width, height)
	d.tracker.MarkAll()
	d.hw.AccumulateAll(d.buf.Bounds())
	d.logger.Debug("display resized", "width", width, "height", height)
}

// Flush pushes the accumulated damage to the backends and clears it.
// Flushed cells are mirrored into Shadow when some backend diffs against it.
func (d *Display) Flush() {
	d.tracker.TakeChanged()
	rows := d.tracker.Rows()
	frame := &hw.Frame{
		Screen:     d.buf,
		Rows:       rows,
		Cursor:     d.cursor.Position(),
		CursorType: d.cursor.Type(),
	}
	if !d.hw.Pending() && !frame.HasRows() {
		return
	}

	d.hw.Flush(frame)

	if d.hw.NeedShadow() {
		for y, r := range rows {
			for _, s := range r {
				if s.Valid() {
					d.buf.SyncShadow(core.NewRect(s.Start, y, s.End, y))
				}
			}
		}
	}
	d.tracker.Clear()
}

// FlipMouse inverts the colors of the cell under rec's pointer and
// remembers the position. It records no damage: it runs on every pointer
// motion, and the caller flips the cell back before the next move.
func (d *Display) FlipMouse(rec *hw.Record) {
	rec.LastMouse = rec.Mouse
	x, y := rec.Mouse.X, rec.Mouse.Y
	w, h := d.buf.Size()
	if x < 0 || x >= w || y < 0 || y >= h {
		return
	}
	c := d.buf.Cell(x, y)
	col := ^c.Color() ^ core.MakeColor(core.High, core.High)
	d.buf.SetCell(x, y, c.WithColor(col))
}

// Quit cleans up every backend. It is the single shutdown path, used for
// both normal exit and fatal signals.
func (d *Display) Quit() error {
	return d.hw.Cleanup()
}
