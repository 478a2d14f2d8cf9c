package app

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/dshills/textscreen/internal/video/backend"
	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/display"
)

func newTestApp(t *testing.T, w, h int, opts Options) (*Application, *backend.Null) {
	t.Helper()
	d := display.New(w, h)
	n := backend.NewNull(w, h)
	if _, err := d.HW().Attach("null", n); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	opts.TTY = -1
	return New(d, nil, opts), n
}

func startApp(app *Application) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- app.Run(context.Background())
	}()
	return ch
}

func waitRun(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestRunRequiresBackend(t *testing.T) {
	app := New(display.New(4, 4), nil, Options{TTY: -1})
	err := app.Run(context.Background())

	var ie *InitError
	if !errors.As(err, &ie) || !errors.Is(err, ErrNoBackend) {
		t.Errorf("Run() = %v, want InitError wrapping ErrNoBackend", err)
	}
}

func TestRunQuit(t *testing.T) {
	app, n := newTestApp(t, 4, 3, Options{})
	ch := startApp(app)

	app.Post(Event{Kind: EventResize, Width: 8, Height: 5})
	app.Post(Event{Kind: EventQuit})

	if err := waitRun(t, ch); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if w, h := app.Display().Size(); w != 8 || h != 5 {
		t.Errorf("size = %dx%d, want 8x5", w, h)
	}
	if n.Cleanups != 1 {
		t.Errorf("Cleanups = %d, want 1", n.Cleanups)
	}
	if len(n.Flushes) == 0 {
		t.Error("the screen should be painted on start")
	}
	select {
	case <-app.Done():
	default:
		t.Error("Done should be closed after quit")
	}
	if app.Post(Event{Kind: EventQuit}) {
		t.Error("Post after shutdown should fail")
	}
	if app.IsRunning() {
		t.Error("IsRunning() should be false after Run returns")
	}
}

func TestRunFatalSignalCleansUpFirst(t *testing.T) {
	app, n := newTestApp(t, 4, 3, Options{})

	var raised os.Signal
	cleanupsAtRaise := -1
	app.reraise = func(sig os.Signal) error {
		raised = sig
		cleanupsAtRaise = n.Cleanups
		return nil
	}

	ch := startApp(app)
	app.Post(Event{Kind: EventFatal, Signal: syscall.SIGTERM})
	err := waitRun(t, ch)

	var fe *FatalSignalError
	if !errors.As(err, &fe) || fe.Signal != syscall.SIGTERM {
		t.Fatalf("Run() = %v, want FatalSignalError(SIGTERM)", err)
	}
	if raised != syscall.SIGTERM {
		t.Errorf("raised %v, want SIGTERM", raised)
	}
	if cleanupsAtRaise != 1 {
		t.Errorf("backends cleaned %d times before re-raise, want 1", cleanupsAtRaise)
	}
	if n.Cleanups != 1 {
		t.Errorf("Cleanups = %d, want exactly 1", n.Cleanups)
	}
}

func TestRunReapsChildren(t *testing.T) {
	app, _ := newTestApp(t, 4, 3, Options{})
	calls := 0
	app.reap = func() ([]ChildExit, error) {
		calls++
		return []ChildExit{{Pid: 10}, {Pid: 11}}, nil
	}

	ch := startApp(app)
	app.Post(Event{Kind: EventChildReaped})
	app.Post(Event{Kind: EventQuit})
	if err := waitRun(t, ch); err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("reap calls = %d, want 1", calls)
	}
	if got := app.Metrics().Snapshot().ReapedCount; got != 2 {
		t.Errorf("ReapedCount = %d, want 2", got)
	}
}

func TestRunResizeQueriesTerminal(t *testing.T) {
	tests := []struct {
		name         string
		size         func() (int, int, error)
		wantW, wantH int
	}{
		{"queried", func() (int, int, error) { return 12, 6, nil }, 12, 6},
		{"query fails", func() (int, int, error) { return 0, 0, ErrNoTerminal }, 4, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, 4, 3, Options{})
			app.terminalSize = tt.size

			ch := startApp(app)
			app.Post(Event{Kind: EventResize})
			app.Post(Event{Kind: EventQuit})
			if err := waitRun(t, ch); err != nil {
				t.Fatal(err)
			}
			if w, h := app.Display().Size(); w != tt.wantW || h != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRunMouseFlip(t *testing.T) {
	app, n := newTestApp(t, 5, 3, Options{MouseFlip: true})
	ch := startApp(app)

	app.Post(Event{Kind: EventMouse, Backend: "null", X: 1, Y: 1})
	app.Post(Event{Kind: EventMouse, Backend: "null", X: 2, Y: 1})
	app.Post(Event{Kind: EventMouse, Backend: "nobody", X: 0, Y: 0})
	app.Post(Event{Kind: EventQuit})
	if err := waitRun(t, ch); err != nil {
		t.Fatal(err)
	}

	scr := app.Display().Screen()
	inverted := core.MakeColor(core.Black, core.White)
	if got := scr.Cell(1, 1).Color(); got != core.DefaultColor {
		t.Errorf("old pointer cell = %v, want restored", got)
	}
	if got := scr.Cell(2, 1).Color(); got != inverted {
		t.Errorf("pointer cell = %v, want %v", got, inverted)
	}
	if got := n.Mirror().Cell(2, 1).Color(); got != inverted {
		t.Errorf("backend shows %v under the pointer, want %v", got, inverted)
	}
	if scr.Cell(0, 0).Color() != core.DefaultColor {
		t.Error("unknown backend should not flip anything")
	}
}

// assertPointerOnly checks that every cell is blank except the one under
// the pointer at (px, py), which must be inverted.
func assertPointerOnly(t *testing.T, app *Application, px, py int) {
	t.Helper()
	scr := app.Display().Screen()
	inverted := core.Blank().WithColor(core.MakeColor(core.Black, core.White))
	w, h := scr.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := core.Blank()
			if x == px && y == py {
				want = inverted
			}
			if got := scr.Cell(x, y); got != want {
				t.Errorf("cell (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func mouseAt(x, y int) Event {
	return Event{Kind: EventMouse, Backend: "null", X: x, Y: y}
}

func TestMouseFlipSurvivesResize(t *testing.T) {
	app, _ := newTestApp(t, 10, 5, Options{MouseFlip: true})

	app.consume(mouseAt(2, 1))
	app.consume(Event{Kind: EventResize, Width: 12, Height: 6})
	assertPointerOnly(t, app, -1, -1)

	app.consume(mouseAt(5, 3))
	app.consume(mouseAt(6, 3))
	assertPointerOnly(t, app, 6, 3)
}

func TestMouseFlipSurvivesDrag(t *testing.T) {
	tests := []struct {
		name string
		move func(*Application)
	}{
		{"drag down", func(a *Application) { a.DragArea(core.NewRect(0, 0, 9, 3), 0, 1) }},
		{"drag up", func(a *Application) { a.DragArea(core.NewRect(0, 1, 9, 4), 0, 0) }},
		{"scroll down", func(a *Application) { a.ScrollArea(core.NewRect(0, 0, 9, 4), 0, 1, core.Blank()) }},
		{"scroll left", func(a *Application) { a.ScrollArea(core.NewRect(0, 0, 9, 4), -1, 0, core.Blank()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, 10, 5, Options{MouseFlip: true})

			app.consume(mouseAt(2, 1))
			tt.move(app)
			assertPointerOnly(t, app, 2, 1)

			app.consume(mouseAt(7, 4))
			app.consume(mouseAt(8, 4))
			assertPointerOnly(t, app, 8, 4)
		})
	}
}

func TestMouseFlipAroundHandlerDrawing(t *testing.T) {
	app, _ := newTestApp(t, 10, 5, Options{MouseFlip: true})
	app.SetHandler(func(a *Application, ev Event) {
		if ev.Kind != EventKey {
			return
		}
		if got := a.Display().Screen().Cell(2, 1); got != core.Blank() {
			t.Errorf("handler sees %v under the pointer, want the real cell", got)
		}
		a.Display().FillVideo(core.NewRect(2, 1, 2, 1), core.Blank())
		a.DragArea(core.NewRect(0, 0, 9, 3), 0, 1)
	})

	app.consume(mouseAt(2, 1))
	app.consume(Event{Kind: EventKey, Rune: 'x'})
	assertPointerOnly(t, app, 2, 1)

	app.consume(mouseAt(4, 4))
	assertPointerOnly(t, app, 4, 4)
}

func TestRunHandlerSeesEvents(t *testing.T) {
	app, n := newTestApp(t, 10, 4, Options{})
	var seen []EventKind
	app.SetHandler(func(a *Application, ev Event) {
		seen = append(seen, ev.Kind)
		if ev.Kind == EventKey && ev.Rune == 's' {
			a.DragArea(core.NewRect(0, 1, 9, 3), 0, 0)
		}
	})

	ch := startApp(app)
	app.Post(Event{Kind: EventKey, Rune: 's', Name: "Rune[s]"})
	app.Post(Event{Kind: EventRedraw})
	app.Post(Event{Kind: EventQuit})
	if err := waitRun(t, ch); err != nil {
		t.Fatal(err)
	}

	if len(seen) != 2 || seen[0] != EventKey || seen[1] != EventRedraw {
		t.Errorf("handler saw %v, want [key redraw]", seen)
	}
	if app.Metrics().Snapshot().DragsRedrawn != 1 {
		t.Error("drag should be counted as redrawn: the null backend cannot drag")
	}
	last := n.Flushes[len(n.Flushes)-1]
	if last.Rect() != core.NewRect(0, 0, 9, 3) {
		t.Errorf("redraw box = %v, want the whole screen", last.Rect())
	}
}

func TestRunHandlerRequestsQuit(t *testing.T) {
	app, n := newTestApp(t, 4, 3, Options{})
	app.SetHandler(func(a *Application, ev Event) {
		if ev.Kind == EventKey && ev.Rune == 'q' {
			a.RequestQuit()
		}
	})

	ch := startApp(app)
	app.Post(Event{Kind: EventKey, Rune: 'x'})
	app.Post(Event{Kind: EventKey, Rune: 'q'})
	if err := waitRun(t, ch); err != nil {
		t.Fatalf("Run() = %v, want nil on quit", err)
	}
	if n.Cleanups != 1 {
		t.Errorf("cleanups = %d, want 1", n.Cleanups)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	app, n := newTestApp(t, 4, 3, Options{})
	app.SetHandler(func(*Application, Event) {
		panic("boom")
	})

	ch := startApp(app)
	app.Post(Event{Kind: EventKey})
	err := waitRun(t, ch)

	var pe *RecoveredPanicError
	if !errors.As(err, &pe) || pe.Value != "boom" {
		t.Fatalf("Run() = %v, want recovered panic", err)
	}
	if n.Cleanups != 1 {
		t.Error("panic path should clean up the backends")
	}
}

func TestRunContextCancel(t *testing.T) {
	app, n := newTestApp(t, 4, 3, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() {
		ch <- app.Run(ctx)
	}()
	cancel()

	if err := waitRun(t, ch); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if n.Cleanups != 1 {
		t.Errorf("Cleanups = %d, want 1", n.Cleanups)
	}
}

func TestRunTwice(t *testing.T) {
	app, _ := newTestApp(t, 4, 3, Options{})
	ch := startApp(app)

	deadline := time.Now().Add(2 * time.Second)
	for !app.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("loop did not start")
		}
		time.Sleep(time.Millisecond)
	}
	if err := app.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}

	app.Post(Event{Kind: EventQuit})
	if err := waitRun(t, ch); err != nil {
		t.Fatal(err)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	app, n := newTestApp(t, 4, 3, Options{})

	// Should be safe to call multiple times
	app.Shutdown()
	app.Shutdown()
	app.Shutdown()

	if n.Cleanups != 1 {
		t.Errorf("Cleanups = %d, want 1", n.Cleanups)
	}
}
