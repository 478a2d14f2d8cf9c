// Package app runs the server's event loop around a display. It wires
// process signals, input readers and the video core together, and owns
// the single shutdown path that restores every backend.
package app

import (
	"context"
	"errors"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/display"
	"github.com/dshills/textscreen/internal/video/hw"
)

// DefaultQueueSize is the capacity of the event queue.
const DefaultQueueSize = 64

// Options configures the application.
type Options struct {
	// MouseFlip inverts the colors of the cell under each pointer.
	MouseFlip bool

	// Signals installs the process signal shim while Run is active.
	Signals bool

	// TTY is the descriptor queried when a resize event carries no size.
	// A negative value disables the query.
	TTY int

	// QueueSize is the event queue capacity. Zero means DefaultQueueSize.
	QueueSize int
}

// Handler observes every consumed event after the built-in handling.
// It runs on the loop goroutine and may draw on the display.
type Handler func(app *Application, ev Event)

// Application is the event loop. The loop goroutine is the only one that
// touches the display; other goroutines communicate through Post.
type Application struct {
	display *display.Display
	logger  *Logger
	metrics *Metrics
	opts    Options

	events  chan Event
	shim    *SignalShim
	handler Handler

	// Pointers currently drawn inverted, and whether they are flipped back
	// for the duration of a screen change.
	shown  map[*hw.Record]bool
	hidden bool

	// Set by RequestQuit; checked after each handler call.
	quit bool

	// Process hooks, replaced in tests.
	terminalSize func() (int, int, error)
	reap         func() ([]ChildExit, error)
	reraise      func(os.Signal) error

	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
}

// New creates an application around d. A nil logger discards output.
func New(d *display.Display, logger *Logger, opts Options) *Application {
	if logger == nil {
		logger = NullLogger
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	app := &Application{
		display: d,
		logger:  logger.WithComponent("app"),
		metrics: NewMetrics(),
		opts:    opts,
		events:  make(chan Event, opts.QueueSize),
		shown:   make(map[*hw.Record]bool),
		reap:    ReapChildren,
		reraise: Reraise,
		done:    make(chan struct{}),
	}
	app.shim = NewSignalShim(app.events)
	app.terminalSize = func() (int, int, error) {
		if opts.TTY < 0 {
			return 0, 0, ErrNoTerminal
		}
		return TerminalSize(opts.TTY)
	}
	return app
}

// SetHandler sets the event observer. Must be called before Run.
func (app *Application) SetHandler(h Handler) {
	app.handler = h
}

// Display returns the display driven by the loop.
func (app *Application) Display() *display.Display {
	return app.display
}

// IsRunning returns true if the loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// RequestQuit stops the loop after the current event. It is meant for
// handlers, which run on the loop and must not block in Post.
func (app *Application) RequestQuit() {
	app.quit = true
}

// Done is closed once the application has shut down.
func (app *Application) Done() <-chan struct{} {
	return app.done
}

// Post queues an event for the loop. It blocks while the queue is full
// and returns false once the application has shut down.
func (app *Application) Post(ev Event) bool {
	select {
	case <-app.done:
		return false
	default:
	}
	select {
	case app.events <- ev:
		return true
	case <-app.done:
		return false
	}
}

// Run paints the screen and consumes events until quit, a fatal signal,
// cancellation of ctx or a panic. Every exit path goes through Shutdown.
// A quit request returns nil.
func (app *Application) Run(ctx context.Context) (err error) {
	if app.display.HW().Len() == 0 {
		return &InitError{Component: "display", Err: ErrNoBackend}
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.opts.Signals {
		app.shim.Start()
		defer app.shim.Stop()
	}

	defer func() {
		if r := recover(); r != nil {
			err = &RecoveredPanicError{Value: r, Stack: string(debug.Stack())}
			app.logger.Error("event loop panic", "panic", r)
			app.Shutdown()
		}
	}()

	app.display.RefreshVideo()
	app.Flush()
	app.logger.Info("event loop started")

	for {
		select {
		case <-ctx.Done():
			app.logger.Info("context canceled")
			app.Shutdown()
			return nil
		case <-app.done:
			return nil
		case ev := <-app.events:
			if stop := app.consume(ev); stop != nil {
				return app.finish(stop)
			}
			// Drain what is already queued before repainting.
			for n := len(app.events); n > 0; n-- {
				if stop := app.consume(<-app.events); stop != nil {
					return app.finish(stop)
				}
			}
			app.Flush()
		}
	}
}

func (app *Application) finish(stop error) error {
	app.Shutdown()
	if errors.Is(stop, ErrQuit) {
		return nil
	}
	return stop
}

// consume handles one event. A non-nil result stops the loop.
func (app *Application) consume(ev Event) error {
	app.metrics.RecordEvent(ev.Kind)
	app.logger.Debug("event", "event", ev)

	switch ev.Kind {
	case EventResize:
		app.resize(ev)
	case EventChildReaped:
		app.reapChildren()
	case EventFatal:
		app.logger.Error("fatal signal", "signal", ev.Signal)
		app.Shutdown()
		if err := app.reraise(ev.Signal); err != nil {
			app.logger.Error("re-raise failed", "signal", ev.Signal, "error", err)
		}
		return &FatalSignalError{Signal: ev.Signal}
	case EventQuit:
		return ErrQuit
	case EventRedraw:
		w, h := app.display.Size()
		app.display.NeedRedrawVideo(core.RectFromSize(0, 0, w, h))
	case EventMouse:
		app.moveMouse(ev)
	}

	if app.handler != nil {
		// The handler draws on the cells as they really are.
		hid := app.hidePointers()
		app.handler(app, ev)
		if hid {
			app.showPointers()
		}
	}
	if app.quit {
		return ErrQuit
	}
	return nil
}

func (app *Application) resize(ev Event) {
	app.shim.AckResize()

	w, h := ev.Width, ev.Height
	if w <= 0 || h <= 0 {
		var err error
		w, h, err = app.terminalSize()
		if err != nil {
			app.logger.Warn("resize ignored", "error", &OperationError{Op: "resize", Err: err})
			return
		}
	}
	// Resize keeps the top-left contents: restore the cells under the
	// pointers first. They are drawn again on the next move.
	app.hidePointers()
	clear(app.shown)
	app.hidden = false
	app.display.Resize(w, h)
}

func (app *Application) reapChildren() {
	exits, err := app.reap()
	for _, c := range exits {
		app.logger.Debug("child reaped", "pid", c.Pid)
	}
	app.metrics.RecordReaped(len(exits))
	if err != nil {
		app.logger.Warn("reap failed", "error", &OperationError{Op: "reap", Err: err})
	}
}

// moveMouse records a pointer move and, with MouseFlip, moves the
// inverted cell: the old one is flipped back before the new one is drawn.
func (app *Application) moveMouse(ev Event) {
	hwd := app.display.HW()
	rec, ok := hwd.Lookup(ev.Backend)
	if !ok {
		app.logger.Debug("mouse event for unknown backend", "backend", ev.Backend)
		return
	}
	if !app.opts.MouseFlip {
		hwd.SetMouse(rec, ev.X, ev.Y)
		return
	}

	if app.shown[rec] {
		app.flipPointer(rec)
	}
	hwd.SetMouse(rec, ev.X, ev.Y)
	app.flipPointer(rec)
	app.shown[rec] = true
}

// Flush pushes pending damage to the backends and times it.
func (app *Application) Flush() {
	if !app.display.Tracker().Changed() && !app.display.HW().Pending() {
		return
	}
	start := time.Now()
	app.display.Flush()
	app.metrics.RecordFlush(time.Since(start))
}

// DragArea moves an area of the screen and counts how it was done.
// Inverted pointers are restored during the move so they are not dragged
// along.
func (app *Application) DragArea(src core.Rect, dstX, dstY int) bool {
	if app.hidePointers() {
		defer app.showPointers()
	}
	accel := app.display.DragArea(src, dstX, dstY)
	app.metrics.RecordDrag(accel)
	return accel
}

// ScrollArea scrolls r by (dx, dy), filling the uncovered strip.
func (app *Application) ScrollArea(r core.Rect, dx, dy int, fill core.Cell) {
	if app.hidePointers() {
		defer app.showPointers()
	}
	app.display.ScrollArea(r, dx, dy, fill)
}

// hidePointers flips every shown pointer back to the cell's own colors.
// It reports false when they are already hidden.
func (app *Application) hidePointers() bool {
	if app.hidden {
		return false
	}
	app.hidden = true
	for rec := range app.shown {
		app.flipPointer(rec)
	}
	return true
}

// showPointers inverts the shown pointers again.
func (app *Application) showPointers() {
	for rec := range app.shown {
		app.flipPointer(rec)
	}
	app.hidden = false
}

func (app *Application) flipPointer(rec *hw.Record) {
	p := app.display.HW().Mouse(rec)
	app.display.DirtyVideo(p.X, p.Y, p.X, p.Y)
	app.display.FlipMouse(rec)
}

// Shutdown restores every backend. It runs once; later calls return nil.
// It must run on the loop goroutine, or after Run has returned.
func (app *Application) Shutdown() error {
	var err error
	app.stopOnce.Do(func() {
		close(app.done)
		if err = app.display.Quit(); err != nil {
			app.logger.Error("backend cleanup failed", "error", err)
		}
		app.logger.Info("shut down")
	})
	return err
}
