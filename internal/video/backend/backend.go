// Package backend provides the reference display backends: a recording
// Null backend, a tcell terminal backend and a raw ANSI stream backend.
package backend

import (
	"errors"

	"github.com/dshills/textscreen/internal/video/dirty"
	"github.com/dshills/textscreen/internal/video/hw"
)

// ErrNoDrag is returned by DragArea on backends that never accelerate.
var ErrNoDrag = errors.New("backend cannot drag")

// ErrClosed is returned by calls made after Cleanup.
var ErrClosed = errors.New("backend closed")

// forEachSpan calls fn for every run of cells a flush has to draw: the
// row damage of the frame merged with the backend's own box.
func forEachSpan(f *hw.Frame, box hw.Damage, fn func(y, x0, x1 int)) {
	w, h := f.Screen.Size()
	r, boxed := box.Rect().Clip(w, h)

	for y := 0; y < h; y++ {
		row := f.Row(y)
		if boxed && y >= r.Up && y <= r.Down {
			row = row.Add(dirty.Span{Start: r.Left, End: r.Right})
		}
		for _, s := range row {
			if !s.Valid() {
				continue
			}
			fn(y, s.Start, min(s.End, w-1))
		}
	}
}
