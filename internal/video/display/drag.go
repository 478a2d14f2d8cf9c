package display

import (
	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/screen"
)

// DragArea moves the src rectangle so its top-left corner lands on
// (dstX, dstY). It must be fast: when every backend can scroll the area
// natively the move is pushed to them instead of redrawing the
// destination. Acceleration is all or nothing so the displays never
// disagree.
//
// It reports whether the move was accelerated.
func (d *Display) DragArea(src core.Rect, dstX, dstY int) bool {
	w, h := d.buf.Size()
	src, dstX, dstY, ok := screen.ClipMove(src, dstX, dstY, w, h)
	if !ok {
		return false
	}
	dst := src.Translate(dstX, dstY)

	accel := d.hw.CanAccelerateDragNow(src, dstX, dstY)
	if accel {
		// Backends must be in sync with Live before they scroll.
		d.Flush()
		d.hw.DragArea(src, dstX, dstY)
	} else {
		d.tracker.MarkDirty(dst.Left, dst.Up, dst.Right, dst.Down)
	}

	d.buf.Move(src, dstX, dstY)

	if accel && d.hw.NeedShadow() {
		d.buf.SyncShadow(dst)
	}
	d.logger.Debug("drag area", "src", src, "dstX", dstX, "dstY", dstY, "accel", accel)
	return accel
}

// ScrollArea moves r by (dx, dy) and fills the uncovered strip with fill.
// Only one of dx, dy is expected to be non-zero.
func (d *Display) ScrollArea(r core.Rect, dx, dy int, fill core.Cell) {
	if r.IsEmpty() || (dx == 0 && dy == 0) {
		return
	}
	if abs(dx) > r.Width() || abs(dy) > r.Height() || (dx != 0 && dy != 0) {
		d.FillVideo(r, fill)
		return
	}

	src := r
	switch {
	case dy < 0:
		src.Up -= dy
	case dy > 0:
		src.Down -= dy
	case dx < 0:
		src.Left -= dx
	default:
		src.Right -= dx
	}
	if !src.IsEmpty() {
		d.DragArea(src, src.Left+dx, src.Up+dy)
	}

	strip := r
	switch {
	case dy < 0:
		strip.Up = r.Down + dy + 1
	case dy > 0:
		strip.Down = r.Up + dy - 1
	case dx < 0:
		strip.Left = r.Right + dx + 1
	default:
		strip.Right = r.Left + dx - 1
	}
	d.FillVideo(strip, fill)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
