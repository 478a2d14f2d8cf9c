//go:build unix

package app

import (
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// FatalSignals are the signals that restore the display before the
// process dies.
var FatalSignals = []os.Signal{
	syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGILL,
	syscall.SIGABRT, syscall.SIGBUS, syscall.SIGFPE, syscall.SIGSEGV,
	syscall.SIGTERM, syscall.SIGXCPU, syscall.SIGXFSZ,
}

// SignalShim turns process signals into loop events. It never touches
// server state: it only sends on the events channel.
type SignalShim struct {
	sigCh  chan os.Signal
	events chan<- Event
	stopCh chan struct{}
	doneCh chan struct{}

	// resizePending coalesces SIGWINCH bursts into one event until the
	// loop acknowledges it.
	resizePending atomic.Bool
}

// NewSignalShim creates a shim that posts to events.
func NewSignalShim(events chan<- Event) *SignalShim {
	return &SignalShim{
		sigCh:  make(chan os.Signal, 8),
		events: events,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start installs the handlers and begins forwarding.
func (s *SignalShim) Start() {
	signal.Ignore(syscall.SIGPIPE, syscall.SIGIO)
	watched := append([]os.Signal{syscall.SIGWINCH, syscall.SIGCHLD}, FatalSignals...)
	signal.Notify(s.sigCh, watched...)
	go s.watchLoop()
}

// Stop removes the handlers and waits for the forwarder to exit.
func (s *SignalShim) Stop() {
	signal.Stop(s.sigCh)
	close(s.stopCh)
	<-s.doneCh
}

// AckResize re-arms resize notification. The loop calls it before it
// queries the new size, so a resize arriving meanwhile is not lost.
func (s *SignalShim) AckResize() {
	s.resizePending.Store(false)
}

func (s *SignalShim) watchLoop() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			return
		case sig := <-s.sigCh:
			ev, ok := s.translate(sig)
			if !ok {
				continue
			}
			select {
			case s.events <- ev:
			case <-s.stopCh:
				return
			}
		}
	}
}

// translate maps a signal to its event. It reports false for signals
// that need no event, such as a resize already pending.
func (s *SignalShim) translate(sig os.Signal) (Event, bool) {
	switch sig {
	case syscall.SIGWINCH:
		if !s.resizePending.CompareAndSwap(false, true) {
			return Event{}, false
		}
		return Event{Kind: EventResize}, true
	case syscall.SIGCHLD:
		return Event{Kind: EventChildReaped}, true
	default:
		return Event{Kind: EventFatal, Signal: sig}, true
	}
}

// TerminalSize returns the size of the terminal on fd.
func TerminalSize(fd int) (width, height int, err error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

// ChildExit is a reaped child process.
type ChildExit struct {
	Pid    int
	Status unix.WaitStatus
}

// ReapChildren collects every exited child without blocking.
func ReapChildren() ([]ChildExit, error) {
	var out []ChildExit
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			return out, nil
		case err != nil:
			return out, err
		case pid <= 0:
			return out, nil
		}
		out = append(out, ChildExit{Pid: pid, Status: ws})
	}
}

// Reraise restores the default action of sig and sends it to the process
// again, so it dies with the status its parent expects.
func Reraise(sig os.Signal) error {
	ss, ok := sig.(syscall.Signal)
	if !ok {
		return errors.New("not a system signal")
	}
	signal.Reset(sig)
	return unix.Kill(os.Getpid(), ss)
}
