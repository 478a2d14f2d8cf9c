package dirty

// Tracker accumulates per-row damage for a width x height screen.
//
// Tracker is not safe for concurrent use; it belongs to the event loop
// that owns the screen buffer.
type Tracker struct {
	width, height int
	rows          []Row

	// changed is consumed by the renderer, changedAgain by a secondary
	// observer. Each consumer clears only its own flag.
	changed      bool
	changedAgain bool
}

// NewTracker creates a tracker with every row clean.
// Negative dimensions are treated as zero.
func NewTracker(width, height int) *Tracker {
	t := &Tracker{}
	t.Resize(width, height)
	return t
}

// Resize reallocates the rows for new dimensions and drops all damage.
func (t *Tracker) Resize(width, height int) {
	t.width = max(width, 0)
	t.height = max(height, 0)
	t.rows = make([]Row, t.height)
	for y := range t.rows {
		t.rows[y] = EmptyRow()
	}
	t.changed = false
	t.changedAgain = false
}

// Size returns the tracked dimensions.
func (t *Tracker) Size() (width, height int) {
	return t.width, t.height
}

// MarkDirty records damage on the inclusive rectangle
// (xStart, yStart)-(xEnd, yEnd). Inverted or off-screen rectangles are
// ignored; partially visible ones are clipped.
//
// Call it before touching the cells so observers never miss a change.
func (t *Tracker) MarkDirty(xStart, yStart, xEnd, yEnd int) {
	if xStart > xEnd || xStart >= t.width || xEnd < 0 ||
		yStart > yEnd || yStart >= t.height || yEnd < 0 {
		return
	}
	xStart = max(xStart, 0)
	yStart = max(yStart, 0)
	xEnd = min(xEnd, t.width-1)
	yEnd = min(yEnd, t.height-1)

	t.changed = true
	t.changedAgain = true

	n := Span{Start: xStart, End: xEnd}
	for y := yStart; y <= yEnd; y++ {
		t.rows[y] = t.rows[y].Add(n)
	}
}

// MarkAll marks the whole screen dirty.
func (t *Tracker) MarkAll() {
	t.MarkDirty(0, 0, t.width-1, t.height-1)
}

// Row returns the spans of row y. Rows outside the screen are clean.
func (t *Tracker) Row(y int) Row {
	if y < 0 || y >= t.height {
		return EmptyRow()
	}
	return t.rows[y]
}

// Rows returns a copy of all rows.
func (t *Tracker) Rows() []Row {
	rows := make([]Row, len(t.rows))
	copy(rows, t.rows)
	return rows
}

// ClearRow drops the damage of row y.
func (t *Tracker) ClearRow(y int) {
	if y >= 0 && y < t.height {
		t.rows[y] = EmptyRow()
	}
}

// Clear drops the damage of every row. The change flags are left alone:
// they belong to their consumers.
func (t *Tracker) Clear() {
	for y := range t.rows {
		t.rows[y] = EmptyRow()
	}
}

// Changed reports whether anything was marked since the renderer last
// consumed the flag.
func (t *Tracker) Changed() bool {
	return t.changed
}

// TakeChanged returns and clears the renderer flag.
func (t *Tracker) TakeChanged() bool {
	c := t.changed
	t.changed = false
	return c
}

// ChangedAgain reports whether anything was marked since the secondary
// observer last consumed its flag.
func (t *Tracker) ChangedAgain() bool {
	return t.changedAgain
}

// TakeChangedAgain returns and clears the secondary observer flag.
func (t *Tracker) TakeChangedAgain() bool {
	c := t.changedAgain
	t.changedAgain = false
	return c
}

// DirtyCells returns the number of cells currently marked.
func (t *Tracker) DirtyCells() int {
	n := 0
	for _, r := range t.rows {
		n += r.Cells()
	}
	return n
}
