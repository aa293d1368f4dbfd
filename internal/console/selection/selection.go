// Package selection tracks the mouse-driven text selection of the console
// widget: an anchor-to-cursor range in cell coordinates, containment
// queries for the render pass, and extraction of the selected text from a
// screen dump.
//
// A Model is owned by the UI loop and is not safe for concurrent use.
package selection

import "github.com/dhowlett/conview/internal/console/core"

// Model tracks the selection range and its lifecycle.
//
// Two flags govern the lifecycle: selecting reports a drag in progress
// (Contains answers true only while it is set), while the stored range
// stays addressable after the drag ends so Extract keeps working until
// the next Begin or Clear.
type Model struct {
	start core.CellPos
	end   core.CellPos

	selecting bool
	hasRange  bool
}

// Begin activates a selection anchored at pos with a zero-length range.
// Any previously stored range is discarded.
func (m *Model) Begin(pos core.CellPos) {
	m.start = pos
	m.end = pos
	m.selecting = true
	m.hasRange = true
}

// Extend moves the end of the selection to pos. It is a no-op unless a
// drag is in progress.
func (m *Model) Extend(pos core.CellPos) {
	if !m.selecting {
		return
	}
	m.end = pos
}

// End completes the drag gesture. Highlighting stops but the stored
// range remains addressable for extraction.
func (m *Model) End() {
	m.selecting = false
}

// Clear resets the model to its zero state.
func (m *Model) Clear() {
	*m = Model{}
}

// Selecting reports whether a drag gesture is in progress.
func (m *Model) Selecting() bool {
	return m.selecting
}

// Range returns the stored anchor and cursor endpoints, unnormalized,
// and whether a range is stored at all.
func (m *Model) Range() (start, end core.CellPos, ok bool) {
	return m.start, m.end, m.hasRange
}

// normalized returns the endpoints ordered so start precedes end in
// row-major order. The stored range is never reordered; normalization
// happens at query time only.
func (m *Model) normalized() (start, end core.CellPos) {
	if m.end.Before(m.start) {
		return m.end, m.start
	}
	return m.start, m.end
}

// Contains reports whether the cell at (col, row) lies within the live
// selection. It always returns false when no drag is in progress.
//
// Bounds are inclusive on both endpoints: a cell on the start row must
// have col >= the normalized start column, a cell on the end row must
// have col <= the normalized end column, and cells on interior rows are
// always included.
func (m *Model) Contains(col, row int) bool {
	if !m.selecting {
		return false
	}

	start, end := m.normalized()

	if row < start.Row || row > end.Row {
		return false
	}
	if row == start.Row && col < start.Col {
		return false
	}
	if row == end.Row && col > end.Col {
		return false
	}
	return true
}
