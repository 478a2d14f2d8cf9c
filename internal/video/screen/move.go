package screen

import "github.com/dshills/textscreen/internal/video/core"

// ClipMove trims a move of src to (dstX, dstY) so that both the source and
// the destination lie inside a width x height screen. The translation is
// preserved. The last result is false when nothing is left to move.
func ClipMove(src core.Rect, dstX, dstY, width, height int) (core.Rect, int, int, bool) {
	dx, dy := dstX-src.Left, dstY-src.Up

	src, ok := src.Clip(width, height)
	if !ok {
		return core.Rect{}, 0, 0, false
	}
	dst, ok := src.Translate(src.Left+dx, src.Up+dy).Clip(width, height)
	if !ok {
		return core.Rect{}, 0, 0, false
	}
	src = dst.Translate(dst.Left-dx, dst.Up-dy)
	return src, dst.Left, dst.Up, true
}

// Move copies the live cells of src so that its top-left corner lands on
// (dstX, dstY). Source and destination may overlap: rows are walked in
// the direction that never reads a row already overwritten. The move is
// clipped to the screen first.
func (b *Buffer) Move(src core.Rect, dstX, dstY int) {
	src, dstX, dstY, ok := ClipMove(src, dstX, dstY, b.width, b.height)
	if !ok {
		return
	}

	count := src.Height()
	n := src.Width()
	w := b.width
	from := src.Up*w + src.Left
	to := dstY*w + dstX

	switch {
	case dstY < src.Up:
		// Upwards: top to bottom.
		for ; count > 0; count-- {
			copy(b.live[to:to+n], b.live[from:from+n])
			from += w
			to += w
		}
	case dstY == src.Up:
		if dstX == src.Left {
			return
		}
		// Same rows, columns may overlap inside each row: copy is
		// memmove-safe, which is what this case needs.
		for ; count > 0; count-- {
			copy(b.live[to:to+n], b.live[from:from+n])
			from += w
			to += w
		}
	default:
		// Downwards: bottom to top.
		from += (count - 1) * w
		to += (count - 1) * w
		for ; count > 0; count-- {
			copy(b.live[to:to+n], b.live[from:from+n])
			from -= w
			to -= w
		}
	}
}
