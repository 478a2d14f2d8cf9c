package core

import "fmt"

// Point is a screen position in cells.
type Point struct {
	X, Y int
}

// Rect is a screen rectangle with inclusive edges.
// A rect with Left > Right or Up > Down is empty.
type Rect struct {
	Left, Up, Right, Down int
}

// NewRect creates a rect from its inclusive edges.
func NewRect(left, up, right, down int) Rect {
	return Rect{Left: left, Up: up, Right: right, Down: down}
}

// RectFromSize creates a rect from its top-left corner and size.
func RectFromSize(left, up, width, height int) Rect {
	return Rect{Left: left, Up: up, Right: left + width - 1, Down: up + height - 1}
}

// Width returns the number of columns covered.
func (r Rect) Width() int {
	if r.Right < r.Left {
		return 0
	}
	return r.Right - r.Left + 1
}

// Height returns the number of rows covered.
func (r Rect) Height() int {
	if r.Down < r.Up {
		return 0
	}
	return r.Down - r.Up + 1
}

// IsEmpty returns true if the rect covers no cell.
func (r Rect) IsEmpty() bool {
	return r.Left > r.Right || r.Up > r.Down
}

// Contains returns true if the point is inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Up && p.Y <= r.Down
}

// Translate moves the rect so that its top-left corner is at (x, y).
func (r Rect) Translate(x, y int) Rect {
	return Rect{Left: x, Up: y, Right: x + r.Right - r.Left, Down: y + r.Down - r.Up}
}

// Clip returns the part of r inside a width x height screen.
// The second result is false when nothing is left.
func (r Rect) Clip(width, height int) (Rect, bool) {
	if r.IsEmpty() || r.Left >= width || r.Up >= height || r.Right < 0 || r.Down < 0 {
		return Rect{}, false
	}
	r.Left = max(r.Left, 0)
	r.Up = max(r.Up, 0)
	r.Right = min(r.Right, width-1)
	r.Down = min(r.Down, height-1)
	return r, true
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rect{
		Left:  min(r.Left, other.Left),
		Up:    min(r.Up, other.Up),
		Right: max(r.Right, other.Right),
		Down:  max(r.Down, other.Down),
	}
}

// String returns a string representation of the rect.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Up, r.Right, r.Down)
}
