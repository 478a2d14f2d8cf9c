package hw

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/textscreen/internal/video/core"
	"github.com/dshills/textscreen/internal/video/dirty"
	"github.com/dshills/textscreen/internal/video/screen"
)

type fakeBackend struct {
	name     string
	log      *[]string
	canDrag  bool
	shadow   bool
	flushes  []Damage
	drags    int
	cleanups int
	err      error
}

func (f *fakeBackend) Flush(_ *Frame, box Damage) error {
	f.flushes = append(f.flushes, box)
	*f.log = append(*f.log, f.name+".flush")
	return f.err
}

func (f *fakeBackend) Cleanup() error {
	f.cleanups++
	*f.log = append(*f.log, f.name+".cleanup")
	return f.err
}

func (f *fakeBackend) CanDragNow(core.Rect, int, int) bool {
	*f.log = append(*f.log, f.name+".can")
	return f.canDrag
}

func (f *fakeBackend) DragArea(core.Rect, int, int) error {
	f.drags++
	*f.log = append(*f.log, f.name+".drag")
	return f.err
}

func (f *fakeBackend) UsesShadow() bool { return f.shadow }

func newFakes(n int) (*Dispatcher, []*fakeBackend, *[]string) {
	var log []string
	d := NewDispatcher(nil)
	fakes := make([]*fakeBackend, n)
	for i := range fakes {
		fakes[i] = &fakeBackend{name: string(rune('a' + i)), log: &log, canDrag: true}
		if _, err := d.Attach(fakes[i].name, fakes[i]); err != nil {
			panic(err)
		}
	}
	return d, fakes, &log
}

func emptyFrame() *Frame {
	return &Frame{Screen: screen.New(10, 5), Rows: dirty.NewTracker(10, 5).Rows()}
}

func TestDamageAdd(t *testing.T) {
	var d Damage
	if !d.Rect().IsEmpty() {
		t.Error("zero damage should be empty")
	}

	d.Add(core.NewRect(2, 3, 4, 5))
	if d != (Damage{Left: 2, Up: 3, Right: 4, Down: 5, Pending: true}) {
		t.Errorf("first Add() = %+v", d)
	}

	d.Add(core.NewRect(0, 4, 3, 9))
	if d.Rect() != core.NewRect(0, 3, 4, 9) {
		t.Errorf("Rect() = %v, want (0,3)-(4,9)", d.Rect())
	}

	d.Add(core.NewRect(5, 5, 4, 4))
	if d.Rect() != core.NewRect(0, 3, 4, 9) {
		t.Error("empty rect should not change the box")
	}

	d.Reset()
	if d.Pending {
		t.Error("Reset should clear pending")
	}
}

func TestDispatcherAttachDetach(t *testing.T) {
	d, fakes, _ := newFakes(3)

	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}
	recs := d.Records()
	for i, rec := range recs {
		if rec.Backend != fakes[i] {
			t.Errorf("record %d out of registration order", i)
		}
	}

	if err := d.Detach(recs[1].ID); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if fakes[1].cleanups != 1 {
		t.Error("Detach should clean up the backend")
	}
	if _, ok := d.Lookup("b"); ok {
		t.Error("detached backend still found")
	}

	err := d.Detach(uuid.New())
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Detach(unknown) = %v, want ErrUnknownBackend", err)
	}

	if _, err := d.Attach("nil", nil); !errors.Is(err, ErrNilBackend) {
		t.Errorf("Attach(nil) = %v, want ErrNilBackend", err)
	}
}

func TestDispatcherFlushOnlyPending(t *testing.T) {
	d, fakes, _ := newFakes(2)
	recs := d.Records()

	d.AccumulateDamage(recs[1], core.NewRect(1, 1, 2, 2))
	d.AccumulateDamage(recs[1], core.NewRect(5, 0, 6, 0))

	d.Flush(emptyFrame())

	if len(fakes[0].flushes) != 0 {
		t.Error("backend without damage should not be flushed")
	}
	if len(fakes[1].flushes) != 1 {
		t.Fatalf("flushes = %d, want 1", len(fakes[1].flushes))
	}
	if got := fakes[1].flushes[0].Rect(); got != core.NewRect(1, 0, 6, 2) {
		t.Errorf("flushed box = %v, want (1,0)-(6,2)", got)
	}
	if recs[1].Damage.Pending {
		t.Error("damage should be cleared after flush")
	}
	if d.Pending() {
		t.Error("nothing should be pending after flush")
	}
}

func TestDispatcherFlushRows(t *testing.T) {
	d, fakes, log := newFakes(2)

	tr := dirty.NewTracker(10, 5)
	tr.MarkDirty(0, 0, 3, 0)
	d.Flush(&Frame{Screen: screen.New(10, 5), Rows: tr.Rows()})

	if len(fakes[0].flushes) != 1 || len(fakes[1].flushes) != 1 {
		t.Error("row damage should flush every backend")
	}
	if (*log)[0] != "a.flush" || (*log)[1] != "b.flush" {
		t.Errorf("flush order = %v", *log)
	}
}

func TestDispatcherFlushErrorClearsDamage(t *testing.T) {
	d, fakes, _ := newFakes(1)
	fakes[0].err = errors.New("broken pipe")
	rec := d.Records()[0]

	d.AccumulateAll(core.NewRect(0, 0, 1, 1))
	d.Flush(emptyFrame())

	if rec.Damage.Pending {
		t.Error("failed flush is not retried: damage should be cleared")
	}
}

func TestDispatcherCanAccelerate(t *testing.T) {
	src := core.NewRect(0, 1, 9, 4)

	d := NewDispatcher(nil)
	if d.CanAccelerateDragNow(src, 0, 0) {
		t.Error("no backend means no acceleration")
	}

	d, fakes, log := newFakes(3)
	if !d.CanAccelerateDragNow(src, 0, 0) {
		t.Error("all backends agree: expected acceleration")
	}

	fakes[1].canDrag = false
	*log = (*log)[:0]
	if d.CanAccelerateDragNow(src, 0, 0) {
		t.Error("one refusal must disable acceleration")
	}
	if len(*log) != 2 || (*log)[0] != "a.can" || (*log)[1] != "b.can" {
		t.Errorf("queries = %v, want a then b", *log)
	}

	fakes[1].canDrag = true
	if !d.CanAccelerateDragNow(src, 0, 0) {
		t.Error("answer must not be cached")
	}
}

func TestDispatcherCleanupJoinsErrors(t *testing.T) {
	d, fakes, _ := newFakes(3)
	boom := errors.New("boom")
	fakes[0].err = boom
	fakes[2].err = boom

	err := d.Cleanup()
	if !errors.Is(err, boom) {
		t.Fatalf("Cleanup() = %v, want boom", err)
	}
	var be *BackendError
	if !errors.As(err, &be) || be.Op != "cleanup" {
		t.Errorf("expected a cleanup BackendError, got %v", err)
	}
	for i, f := range fakes {
		if f.cleanups != 1 {
			t.Errorf("backend %d cleanups = %d, want 1", i, f.cleanups)
		}
	}
}

func TestDispatcherNeedShadow(t *testing.T) {
	d, fakes, _ := newFakes(2)
	if d.NeedShadow() {
		t.Error("no backend asked for the shadow")
	}
	fakes[1].shadow = true
	if !d.NeedShadow() {
		t.Error("backend b asked for the shadow")
	}
}

func TestDispatcherDragOrder(t *testing.T) {
	d, _, log := newFakes(2)
	d.DragArea(core.NewRect(0, 0, 1, 1), 0, 1)

	if len(*log) != 2 || (*log)[0] != "a.drag" || (*log)[1] != "b.drag" {
		t.Errorf("drag order = %v", *log)
	}
}
