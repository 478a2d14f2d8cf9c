package main

import (
	"github.com/dshills/textscreen/internal/app"
	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/cursor"
)

var (
	titleColor  = core.MakeColor(core.Yellow|core.High, core.Blue)
	statusColor = core.MakeColor(core.Black, core.Cyan)
	textColor   = core.DefaultColor
)

const helpLine = " type to write | arrows scroll | PgUp/PgDn drag | F5 redraw | Esc quits "

// demo draws a small interactive screen that exercises scrolling, drags
// and the cursor.
type demo struct {
	started bool
	x, y    int
	solid   bool
}

func newDemo() *demo {
	return &demo{x: 0, y: 2}
}

func (d *demo) handle(a *app.Application, ev app.Event) {
	if !d.started || ev.Kind == app.EventResize {
		d.started = true
		d.paint(a)
	}
	if ev.Kind != app.EventKey {
		return
	}

	disp := a.Display()
	w, h := disp.Size()
	body := core.NewRect(0, 2, w-1, h-2)

	switch ev.Name {
	case "Esc", "Ctrl+C":
		a.RequestQuit()
		return
	case "Up":
		a.ScrollArea(body, 0, -1, core.Blank())
	case "Down":
		a.ScrollArea(body, 0, 1, core.Blank())
	case "Left":
		a.ScrollArea(body, -1, 0, core.Blank())
	case "Right":
		a.ScrollArea(body, 1, 0, core.Blank())
	case "PgUp":
		a.DragArea(core.NewRect(0, 3, w-1, h-2), 0, 2)
	case "PgDn":
		a.DragArea(core.NewRect(0, 2, w-1, h-3), 0, 3)
	case "F5":
		disp.NeedRedrawVideo(core.RectFromSize(0, 0, w, h))
	case "Tab":
		d.solid = !d.solid
		if d.solid {
			disp.SetCursorType(cursor.SolidCursor)
		} else {
			disp.SetCursorType(cursor.LineCursor)
		}
	case "Enter":
		d.newline(w, h)
	default:
		if ev.Rune == 'q' && d.x == 0 {
			a.RequestQuit()
			return
		}
		if ev.Rune != 0 {
			disp.WriteString(d.x, d.y, string(ev.Rune), textColor)
			d.x++
			if d.x >= w {
				d.newline(w, h)
			}
		}
	}
	disp.MoveToXY(d.x, d.y)
}

func (d *demo) newline(w, h int) {
	d.x = 0
	if d.y < h-2 {
		d.y++
	}
}

func (d *demo) paint(a *app.Application) {
	disp := a.Display()
	w, h := disp.Size()
	disp.FillVideo(core.RectFromSize(0, 0, w, h), core.Blank())
	disp.FillVideo(core.RectFromSize(0, 0, w, 1), core.MakeCell(titleColor, ' '))
	disp.WriteString(1, 0, "textscreen "+version, titleColor)
	disp.FillVideo(core.RectFromSize(0, h-1, w, 1), core.MakeCell(statusColor, ' '))
	disp.WriteString(0, h-1, helpLine, statusColor)

	d.x, d.y = 0, 2
	disp.MoveToXY(d.x, d.y)
}
