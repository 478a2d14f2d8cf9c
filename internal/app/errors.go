package app

import (
	"errors"
	"fmt"
	"os"
)

// Application errors.
var (
	// ErrQuit signals that the server should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the event loop is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoBackend indicates the display has no backend attached.
	ErrNoBackend = errors.New("no backend attached")

	// ErrNoTerminal indicates there is no terminal to query for its size.
	ErrNoTerminal = errors.New("no terminal to query")
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "resize", "reap", "cleanup")
	Target string // Target of the operation (e.g., backend name)
	Err    error  // Underlying error
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FatalSignalError reports that the loop stopped on a fatal signal. The
// caller is expected to re-raise it after the display is restored.
type FatalSignalError struct {
	Signal os.Signal
}

func (e *FatalSignalError) Error() string {
	return fmt.Sprintf("fatal signal: %v", e.Signal)
}

// RecoveredPanicError wraps a panic value raised inside the event loop.
type RecoveredPanicError struct {
	Value any
	Stack string
}

func (e *RecoveredPanicError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stack != "" {
		return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}
