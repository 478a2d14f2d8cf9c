package core

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette maps the 16 color indices to RGB values.
type Palette [16]colorful.Color

// defaultHex is the classic VGA text mode palette, in index order.
var defaultHex = [16]string{
	"#000000", "#0000AA", "#00AA00", "#00AAAA",
	"#AA0000", "#AA00AA", "#AA5500", "#AAAAAA",
	"#555555", "#5555FF", "#55FF55", "#55FFFF",
	"#FF5555", "#FF55FF", "#FFFF55", "#FFFFFF",
}

// DefaultPalette returns the VGA palette.
func DefaultPalette() Palette {
	var p Palette
	for i, h := range defaultHex {
		p[i], _ = colorful.Hex(h)
	}
	return p
}

// RGB returns the 8-bit RGB components of a palette index.
func (p *Palette) RGB(c Color) (r, g, b uint8) {
	return p[c&0xF].RGB255()
}

// Override replaces palette entries from a map of index to hex color.
// Keys are decimal indices "0".."15".
func (p *Palette) Override(entries map[string]string) error {
	for k, v := range entries {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx > 15 {
			return fmt.Errorf("invalid palette index %q", k)
		}
		c, err := colorful.Hex(v)
		if err != nil {
			return fmt.Errorf("invalid palette color %q for index %d: %w", v, idx, err)
		}
		p[idx] = c
	}
	return nil
}
