// Package cursor holds the logical text cursor of the display.
package cursor

import "github.com/dshills/textscreen/internal/video/core"

// Type is a cursor type code. The low nibble selects the style, the upper
// bits are passed through to the backends untouched.
type Type uint32

// Cursor styles, as understood by the Linux console.
const (
	DefaultCursor Type = 0
	NoCursor      Type = 1
	LineCursor    Type = 2
	SolidCursor   Type = 8

	// StyleMask selects the style nibble.
	StyleMask Type = 0xF
)

// Style returns the style nibble.
func (t Type) Style() Type {
	return t & StyleMask
}

// Normalize maps a zero style to the line cursor and clamps styles above
// the solid cursor to it, preserving the upper bits.
func Normalize(t Type) Type {
	switch s := t.Style(); {
	case s == 0:
		return t | LineCursor
	case s > SolidCursor:
		return t&^StyleMask | SolidCursor
	default:
		return t
	}
}

// State is the cursor position and type.
type State struct {
	pos core.Point
	typ Type
}

// New returns a line cursor at the origin.
func New() *State {
	return &State{typ: LineCursor}
}

// MoveTo sets the logical position. It has no other effect.
func (s *State) MoveTo(x, y int) {
	s.pos = core.Point{X: x, Y: y}
}

// Position returns the logical position.
func (s *State) Position() core.Point {
	return s.pos
}

// SetType stores the normalized type.
func (s *State) SetType(t Type) {
	s.typ = Normalize(t)
}

// Type returns the current type.
func (s *State) Type() Type {
	return s.typ
}
