package app

import (
	"fmt"
	"os"
)

// EventKind identifies an event consumed by the loop.
type EventKind int

const (
	EventNone EventKind = iota
	// EventResize: the terminal changed size. Zero Width/Height means the
	// loop must query the size itself.
	EventResize
	// EventChildReaped: at least one child process exited.
	EventChildReaped
	// EventFatal: a fatal signal arrived. The loop shuts down and the
	// signal is re-raised.
	EventFatal
	// EventQuit: normal exit.
	EventQuit
	// EventMouse: the pointer of a backend moved to X, Y.
	EventMouse
	// EventKey: a key was pressed.
	EventKey
	// EventRedraw: every backend must redraw the whole screen.
	EventRedraw
)

func (k EventKind) String() string {
	switch k {
	case EventResize:
		return "resize"
	case EventChildReaped:
		return "child"
	case EventFatal:
		return "fatal"
	case EventQuit:
		return "quit"
	case EventMouse:
		return "mouse"
	case EventKey:
		return "key"
	case EventRedraw:
		return "redraw"
	default:
		return "none"
	}
}

// Event is a unit of work for the loop. Signal handlers and input readers
// only build events; all state changes happen when the loop consumes them.
type Event struct {
	Kind EventKind

	Signal os.Signal // EventFatal

	Width, Height int // EventResize

	Backend string // EventMouse: name the backend was attached under
	X, Y    int    // EventMouse

	Rune rune   // EventKey
	Name string // EventKey
}

func (e Event) String() string {
	switch e.Kind {
	case EventFatal:
		return fmt.Sprintf("fatal(%v)", e.Signal)
	case EventResize:
		return fmt.Sprintf("resize(%dx%d)", e.Width, e.Height)
	case EventMouse:
		return fmt.Sprintf("mouse(%s %d,%d)", e.Backend, e.X, e.Y)
	case EventKey:
		return fmt.Sprintf("key(%s)", e.Name)
	default:
		return e.Kind.String()
	}
}
