package selection

import "strings"

// Extract returns the text covered by the stored range, given the full
// screen content as a newline-joined sequence of row strings. It works
// after the drag has ended; only Begin or Clear invalidate the range.
//
// Column indices are clamped to each row's actual length, so a range
// extending past a short row never slices out of bounds. The end column
// is exclusive, matching the drag gesture's cell-under-pointer endpoint.
func (m *Model) Extract(dump string) string {
	if !m.hasRange {
		return ""
	}

	lines := strings.Split(dump, "\n")
	start, end := m.normalized()

	if start.Row >= len(lines) || end.Row >= len(lines) {
		return ""
	}

	// Single-row range: slice columns, swapping if dragged leftward.
	if start.Row == end.Row {
		line := []rune(lines[start.Row])
		lo := clamp(start.Col, len(line))
		hi := clamp(end.Col, len(line))
		if hi < lo {
			lo, hi = hi, lo
		}
		return string(line[lo:hi])
	}

	out := make([]string, 0, end.Row-start.Row+1)

	// Partial first row from the start column.
	first := []rune(lines[start.Row])
	out = append(out, string(first[clamp(start.Col, len(first)):]))

	// Full interior rows verbatim.
	for row := start.Row + 1; row < end.Row; row++ {
		out = append(out, lines[row])
	}

	// Partial last row up to the end column.
	last := []rune(lines[end.Row])
	out = append(out, string(last[:clamp(end.Col, len(last))]))

	return strings.Join(out, "\n")
}

// clamp bounds a column index to a row of length n.
func clamp(col, n int) int {
	if col < 0 {
		return 0
	}
	if col > n {
		return n
	}
	return col
}
