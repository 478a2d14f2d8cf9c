package app

import (
	"errors"
	"strings"
	"syscall"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "op only",
			err:      &OperationError{Op: "resize"},
			expected: "resize",
		},
		{
			name:     "op and target",
			err:      &OperationError{Op: "cleanup", Target: "ansi"},
			expected: "cleanup ansi",
		},
		{
			name:     "full error chain",
			err:      &OperationError{Op: "resize", Target: "/dev/tty", Err: errors.New("not a tty")},
			expected: "resize /dev/tty: not a tty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = '%s', expected '%s'", result, tt.expected)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &OperationError{Op: "reap", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}

	var nilErr *OperationError
	if nilErr.Unwrap() != nil {
		t.Error("nil receiver should unwrap to nil")
	}
}

func TestInitError(t *testing.T) {
	err := &InitError{Component: "backend", Err: ErrNoBackend}
	if err.Error() != "init backend: no backend attached" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrNoBackend) {
		t.Error("InitError should unwrap")
	}
}

func TestFatalSignalError(t *testing.T) {
	err := &FatalSignalError{Signal: syscall.SIGTERM}
	if !strings.Contains(err.Error(), "terminated") {
		t.Errorf("Error() = %q, want the signal name", err.Error())
	}
}

func TestRecoveredPanicError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RecoveredPanicError
		expected string
	}{
		{"nil", nil, ""},
		{"value only", &RecoveredPanicError{Value: "boom"}, "panic: boom"},
		{"with stack", &RecoveredPanicError{Value: 42, Stack: "main.go:1"}, "panic: 42\nmain.go:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{ErrQuit, ErrAlreadyRunning, ErrNoBackend, ErrNoTerminal}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if (i == j) != errors.Is(a, b) {
				t.Errorf("errors.Is(%v, %v) = %v", a, b, errors.Is(a, b))
			}
		}
	}
}
