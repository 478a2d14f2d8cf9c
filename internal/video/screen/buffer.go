// Package screen holds the cell grids of the display.
//
// Live is what the screen should show. Shadow mirrors what the backends
// were last told, for the regions pushed through hardware acceleration,
// so later diffs can skip cells that did not really change.
package screen

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/textscreen/internal/video/core"
)

// Buffer owns the Live and Shadow grids, both width x height, row-major.
// Buffer records no damage: callers mark the dirty tracker themselves.
type Buffer struct {
	width, height int
	live          []core.Cell
	shadow        []core.Cell
}

// New creates a buffer filled with blank cells.
// Negative dimensions are treated as zero.
func New(width, height int) *Buffer {
	b := &Buffer{}
	b.allocate(max(width, 0), max(height, 0))
	return b
}

func (b *Buffer) allocate(width, height int) {
	b.width = width
	b.height = height
	b.live = make([]core.Cell, width*height)
	b.shadow = make([]core.Cell, width*height)
	blank := core.Blank()
	for i := range b.live {
		b.live[i] = blank
		b.shadow[i] = blank
	}
}

// Resize reallocates both grids, keeping the top-left content that fits.
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == b.width && height == b.height {
		return
	}

	oldLive, oldShadow, oldWidth := b.live, b.shadow, b.width
	copyHeight := min(b.height, height)
	copyWidth := min(b.width, width)

	b.allocate(width, height)
	for y := 0; y < copyHeight; y++ {
		copy(b.live[y*width:y*width+copyWidth], oldLive[y*oldWidth:])
		copy(b.shadow[y*width:y*width+copyWidth], oldShadow[y*oldWidth:])
	}
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (width, height int) {
	return b.width, b.height
}

// Bounds returns the rect covering the whole buffer.
func (b *Buffer) Bounds() core.Rect {
	return core.RectFromSize(0, 0, b.width, b.height)
}

func (b *Buffer) inside(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Cell returns the live cell at (x, y), or a blank cell outside the screen.
func (b *Buffer) Cell(x, y int) core.Cell {
	if !b.inside(x, y) {
		return core.Blank()
	}
	return b.live[y*b.width+x]
}

// SetCell stores a live cell. Positions outside the screen are ignored.
func (b *Buffer) SetCell(x, y int, c core.Cell) {
	if b.inside(x, y) {
		b.live[y*b.width+x] = c
	}
}

// ShadowCell returns the shadow cell at (x, y).
func (b *Buffer) ShadowCell(x, y int) core.Cell {
	if !b.inside(x, y) {
		return core.Blank()
	}
	return b.shadow[y*b.width+x]
}

// Synced returns true if the live and shadow cells at (x, y) are equal.
func (b *Buffer) Synced(x, y int) bool {
	if !b.inside(x, y) {
		return true
	}
	i := y*b.width + x
	return b.live[i] == b.shadow[i]
}

// Row returns the live cells of row y. The slice aliases the buffer.
func (b *Buffer) Row(y int) []core.Cell {
	if y < 0 || y >= b.height {
		return nil
	}
	return b.live[y*b.width : (y+1)*b.width]
}

// ShadowRow returns the shadow cells of row y. The slice aliases the buffer.
func (b *Buffer) ShadowRow(y int) []core.Cell {
	if y < 0 || y >= b.height {
		return nil
	}
	return b.shadow[y*b.width : (y+1)*b.width]
}

// Fill sets every live cell of the clipped rect to c.
func (b *Buffer) Fill(r core.Rect, c core.Cell) {
	r, ok := r.Clip(b.width, b.height)
	if !ok {
		return
	}
	for y := r.Up; y <= r.Down; y++ {
		row := b.live[y*b.width+r.Left : y*b.width+r.Right+1]
		for i := range row {
			row[i] = c
		}
	}
}

// SyncShadow copies the clipped rect from Live to Shadow.
// Use it after a region was pushed to the backends by acceleration.
func (b *Buffer) SyncShadow(r core.Rect) {
	r, ok := r.Clip(b.width, b.height)
	if !ok {
		return
	}
	for y := r.Up; y <= r.Down; y++ {
		start, end := y*b.width+r.Left, y*b.width+r.Right+1
		copy(b.shadow[start:end], b.live[start:end])
	}
}

// WriteString writes s at (x, y) one grapheme cluster per cell, wide
// clusters taking two cells. Writing stops at the right edge. It returns
// the rect that was written, empty if nothing was.
func (b *Buffer) WriteString(x, y int, s string, col core.Color) core.Rect {
	written := core.Rect{Left: x, Up: y, Right: x - 1, Down: y}
	if y < 0 || y >= b.height {
		return written
	}

	gr := uniseg.NewGraphemes(s)
	for gr.Next() && x < b.width {
		runes := gr.Runes()
		width := gr.Width()
		if width == 0 {
			continue
		}
		if x+width > b.width {
			break
		}
		if x >= 0 {
			b.live[y*b.width+x] = core.MakeCell(col, runes[0])
			if width == 2 {
				b.live[y*b.width+x+1] = core.Continuation(col)
			}
			if written.Right < written.Left {
				written.Left = x
			}
			written.Right = x + width - 1
		}
		x += width
	}
	return written
}
