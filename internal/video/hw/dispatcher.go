package hw

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dshills/textscreen/internal/video/core"
)

// Dispatcher errors.
var (
	// ErrUnknownBackend indicates no attached backend has the given ID.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrNilBackend indicates an attempt to attach a nil backend.
	ErrNilBackend = errors.New("nil backend")
)

// BackendError records a failed backend call.
type BackendError struct {
	Name string // Backend name given at attach
	Op   string // "flush", "drag" or "cleanup"
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.Name, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Record is an attached backend with its per-display state.
type Record struct {
	ID      uuid.UUID
	Name    string
	Backend Backend

	// Damage is the pending redraw box the dispatcher accumulates into.
	Damage Damage

	// Mouse is the last pointer position reported for this display,
	// LastMouse the position where the pointer was last drawn.
	Mouse     core.Point
	LastMouse core.Point
}

// Dispatcher is the registry of attached backends.
//
// Dispatcher is not safe for concurrent use: like the screen buffer it is
// owned by the event loop.
type Dispatcher struct {
	records []*Record
	logger  *slog.Logger
}

// NewDispatcher creates an empty dispatcher. A nil logger discards output.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{logger: logger}
}

// Attach registers a backend at the end of the registration order.
func (d *Dispatcher) Attach(name string, b Backend) (*Record, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	rec := &Record{ID: uuid.New(), Name: name, Backend: b}
	d.records = append(d.records, rec)
	d.logger.Info("backend attached", "name", name, "id", rec.ID)
	return rec, nil
}

// Detach removes a backend and cleans it up.
func (d *Dispatcher) Detach(id uuid.UUID) error {
	for i, rec := range d.records {
		if rec.ID != id {
			continue
		}
		d.records = append(d.records[:i], d.records[i+1:]...)
		d.logger.Info("backend detached", "name", rec.Name, "id", id)
		if err := rec.Backend.Cleanup(); err != nil {
			return &BackendError{Name: rec.Name, Op: "cleanup", Err: err}
		}
		return nil
	}
	return fmt.Errorf("detach %s: %w", id, ErrUnknownBackend)
}

// Records returns the attached backends in registration order.
func (d *Dispatcher) Records() []*Record {
	out := make([]*Record, len(d.records))
	copy(out, d.records)
	return out
}

// Len returns the number of attached backends.
func (d *Dispatcher) Len() int {
	return len(d.records)
}

// Lookup returns the first backend attached under name.
func (d *Dispatcher) Lookup(name string) (*Record, bool) {
	for _, rec := range d.records {
		if rec.Name == name {
			return rec, true
		}
	}
	return nil, false
}

// AccumulateDamage grows rec's pending box to include r.
func (d *Dispatcher) AccumulateDamage(rec *Record, r core.Rect) {
	rec.Damage.Add(r)
}

// AccumulateAll grows every backend's pending box to include r.
func (d *Dispatcher) AccumulateAll(r core.Rect) {
	for _, rec := range d.records {
		rec.Damage.Add(r)
	}
}

// Pending reports whether any backend has a pending box.
func (d *Dispatcher) Pending() bool {
	for _, rec := range d.records {
		if rec.Damage.Pending {
			return true
		}
	}
	return false
}

// Flush hands the frame to every backend that has something to draw:
// a pending box of its own, or row damage in the frame. Boxes are cleared
// afterwards. Failures are logged and not retried.
func (d *Dispatcher) Flush(f *Frame) {
	rows := f.HasRows()
	for _, rec := range d.records {
		if !rec.Damage.Pending && !rows {
			continue
		}
		if err := rec.Backend.Flush(f, rec.Damage); err != nil {
			d.logFailure(&BackendError{Name: rec.Name, Op: "flush", Err: err})
		}
		rec.Damage.Reset()
	}
}

// CanAccelerateDragNow reports whether every backend can move src to
// (dstX, dstY) right now. It asks each backend on every call, in
// registration order, and is false when no backend is attached.
func (d *Dispatcher) CanAccelerateDragNow(src core.Rect, dstX, dstY int) bool {
	if len(d.records) == 0 {
		return false
	}
	for _, rec := range d.records {
		if !rec.Backend.CanDragNow(src, dstX, dstY) {
			return false
		}
	}
	return true
}

// DragArea asks every backend to move src to (dstX, dstY).
func (d *Dispatcher) DragArea(src core.Rect, dstX, dstY int) {
	for _, rec := range d.records {
		if err := rec.Backend.DragArea(src, dstX, dstY); err != nil {
			d.logFailure(&BackendError{Name: rec.Name, Op: "drag", Err: err})
		}
	}
}

// NeedShadow reports whether some backend diffs against the shadow grid.
func (d *Dispatcher) NeedShadow() bool {
	for _, rec := range d.records {
		if su, ok := rec.Backend.(ShadowUser); ok && su.UsesShadow() {
			return true
		}
	}
	return false
}

// SetMouse records the pointer position reported for rec.
func (d *Dispatcher) SetMouse(rec *Record, x, y int) {
	rec.Mouse = core.Point{X: x, Y: y}
}

// Mouse returns the pointer position last reported for rec.
func (d *Dispatcher) Mouse(rec *Record) core.Point {
	return rec.Mouse
}

// Cleanup calls Cleanup on every backend, best effort, and returns the
// joined failures.
func (d *Dispatcher) Cleanup() error {
	var errs []error
	for _, rec := range d.records {
		if err := rec.Backend.Cleanup(); err != nil {
			errs = append(errs, &BackendError{Name: rec.Name, Op: "cleanup", Err: err})
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) logFailure(err *BackendError) {
	d.logger.Warn("backend call failed", "name", err.Name, "op", err.Op, "error", err.Err)
}
