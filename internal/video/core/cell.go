// Package core provides the shared value types of the video subsystem.
// This package breaks import cycles between screen, hw and backend.
package core

import "fmt"

// Color is a packed foreground/background pair.
// The low nibble is the foreground, the high nibble the background.
type Color uint8

// Palette indices. High is the intensity bit.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Yellow
	White
	High
)

// MakeColor packs a foreground and a background index.
func MakeColor(fg, bg Color) Color {
	return fg&0xF | (bg&0xF)<<4
}

// Fg returns the foreground palette index.
func (c Color) Fg() Color {
	return c & 0xF
}

// Bg returns the background palette index.
func (c Color) Bg() Color {
	return c >> 4
}

// String returns a string representation of the color pair.
func (c Color) String() string {
	return fmt.Sprintf("fg=%d bg=%d", c.Fg(), c.Bg())
}

// DefaultColor is white on black.
var DefaultColor = MakeColor(White, Black)

// Cell is one screen cell: a glyph and a color pair packed in 32 bits.
// Bits 0..20 hold the glyph, bits 24..31 the color.
type Cell uint32

const (
	glyphMask  = 0x1FFFFF
	colorShift = 24
)

// MakeCell packs a color pair and a glyph.
func MakeCell(col Color, glyph rune) Cell {
	return Cell(uint32(col)<<colorShift | uint32(glyph)&glyphMask)
}

// Color returns the color pair of the cell.
func (c Cell) Color() Color {
	return Color(c >> colorShift)
}

// Glyph returns the glyph of the cell.
func (c Cell) Glyph() rune {
	return rune(c & glyphMask)
}

// WithColor returns the cell with its color pair replaced.
func (c Cell) WithColor(col Color) Cell {
	return MakeCell(col, c.Glyph())
}

// WithGlyph returns the cell with its glyph replaced.
func (c Cell) WithGlyph(glyph rune) Cell {
	return MakeCell(c.Color(), glyph)
}

// String returns a debug representation of the cell.
func (c Cell) String() string {
	return fmt.Sprintf("%q(%s)", c.Glyph(), c.Color())
}

// Blank returns a space in the default colors.
func Blank() Cell {
	return MakeCell(DefaultColor, ' ')
}

// Continuation is stored in the second column of a wide glyph.
func Continuation(col Color) Cell {
	return MakeCell(col, 0)
}
