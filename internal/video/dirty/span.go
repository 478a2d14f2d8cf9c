// Package dirty tracks which screen cells changed since the last flush.
//
// Each row keeps at most two column spans. A new span either lands in a
// free slot, merges with a span it touches, or forces a choice among the
// five ways of folding three spans into two; the choice that marks the
// fewest cells wins.
package dirty

import "fmt"

// Unused is the Start value of an empty slot.
// It compares lower than any valid column.
const Unused = -1

// Span is an inclusive column range of one row.
type Span struct {
	Start, End int
}

// NoSpan is the value of an empty slot.
var NoSpan = Span{Start: Unused, End: Unused}

// Valid returns true if the slot holds a span.
func (s Span) Valid() bool {
	return s.Start != Unused
}

// Len returns the number of columns covered.
func (s Span) Len() int {
	if !s.Valid() || s.End < s.Start {
		return 0
	}
	return s.End - s.Start + 1
}

// Contains returns true if other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.Valid() && other.Start >= s.Start && other.End <= s.End
}

// Touches returns true if the spans overlap or are adjacent.
func (s Span) Touches(other Span) bool {
	return other.Start <= s.End+1 && other.End+1 >= s.Start
}

// Join returns the smallest span covering both spans.
func (s Span) Join(other Span) Span {
	return Span{Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}

// String returns a string representation of the span.
func (s Span) String() string {
	if !s.Valid() {
		return "(unused)"
	}
	return fmt.Sprintf("(%d,%d)", s.Start, s.End)
}

// Row holds the two span slots of a screen row.
// If slot 1 is valid, slot 0 is valid too and lies to its left.
type Row [2]Span

// EmptyRow returns a row with both slots unused.
func EmptyRow() Row {
	return Row{NoSpan, NoSpan}
}

// IsDirty returns true if the row has any damage.
func (r Row) IsDirty() bool {
	return r[0].Valid()
}

// Covers returns true if column x is inside one of the spans.
func (r Row) Covers(x int) bool {
	p := Span{Start: x, End: x}
	return r[0].Contains(p) || r[1].Contains(p)
}

// Cells returns the number of columns marked dirty.
func (r Row) Cells() int {
	return r[0].Len() + r[1].Len()
}

// Outcome identifies which fold Merge chose.
type Outcome int

const (
	// OutcomeSplit keeps the new span alone and joins the two old ones.
	OutcomeSplit Outcome = iota
	// OutcomeFirst joins the new span with slot 0.
	OutcomeFirst
	// OutcomeAll joins everything into slot 0, freeing slot 1.
	OutcomeAll
	// OutcomeSecond joins the new span with slot 1.
	OutcomeSecond
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSplit:
		return "split"
	case OutcomeFirst:
		return "first"
	case OutcomeAll:
		return "all"
	case OutcomeSecond:
		return "second"
	default:
		return "unknown"
	}
}

// Merge folds a third span n into two occupied slots s0 and s1.
//
// Every candidate is costed by the number of cells it marks. The split
// outcome covers both the "new span first" and "new span second" layouts;
// the new span goes to whichever slot keeps columns ordered. A tie with
// the single-slot outcome always picks the single slot.
func Merge(s0, s1, n Span) (Row, Outcome) {
	best, cost := OutcomeSplit, n.Len()+s0.Join(s1).Len()

	if c := s0.Join(n).Len() + s1.Len(); c < cost {
		best, cost = OutcomeFirst, c
	}
	if c := s0.Join(n).Join(s1).Len(); c <= cost {
		best, cost = OutcomeAll, c
	}
	if c := s0.Len() + s1.Join(n).Len(); c < cost {
		best = OutcomeSecond
	}

	switch best {
	case OutcomeFirst:
		return Row{s0.Join(n), s1}, best
	case OutcomeAll:
		return Row{s0.Join(n).Join(s1), NoSpan}, best
	case OutcomeSecond:
		return Row{s0, s1.Join(n)}, best
	default:
		if n.Start > s0.Start {
			return Row{s0.Join(s1), n}, best
		}
		return Row{n, s0.Join(s1)}, best
	}
}

// Add returns the row with span n added.
func (r Row) Add(n Span) Row {
	s0, s1 := r[0], r[1]

	if !s0.Valid() {
		return Row{n, NoSpan}
	}
	if s0.Contains(n) || s1.Contains(n) {
		return r
	}
	if !s1.Valid() {
		// Two separate spans cost nothing yet; folding waits for a third.
		switch {
		case s0.Touches(n):
			return Row{s0.Join(n), NoSpan}
		case n.Start < s0.Start:
			return Row{n, s0}
		default:
			return Row{s0, n}
		}
	}

	merged, _ := Merge(s0, s1, n)
	return merged
}
