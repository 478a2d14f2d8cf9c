//go:build !unix

package app

import (
	"errors"
	"os"
)

var errUnsupported = errors.New("unsupported on this platform")

// FatalSignals are the signals that restore the display before the
// process dies.
var FatalSignals = []os.Signal{os.Interrupt}

// SignalShim is inert on this platform.
type SignalShim struct{}

// NewSignalShim creates an inert shim.
func NewSignalShim(chan<- Event) *SignalShim { return &SignalShim{} }

func (s *SignalShim) Start()     {}
func (s *SignalShim) Stop()      {}
func (s *SignalShim) AckResize() {}

// TerminalSize is not available.
func TerminalSize(int) (int, int, error) { return 0, 0, errUnsupported }

// ChildExit is a reaped child process.
type ChildExit struct {
	Pid int
}

// ReapChildren has nothing to reap.
func ReapChildren() ([]ChildExit, error) { return nil, nil }

// Reraise exits with a failure status.
func Reraise(os.Signal) error {
	os.Exit(1)
	return nil
}
