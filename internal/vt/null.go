package vt

import "strings"

// NullEngine is an in-memory Engine for testing. Cells and the cursor are
// poked directly; Feed records the bytes it is given and advances the
// cursor by the chunk length so cursor re-sync is observable.
type NullEngine struct {
	cols, rows int
	cells      map[[2]int]Cell
	cursorX    int
	cursorY    int
	age        Age

	// Fed accumulates every chunk passed to Feed, in order.
	Fed [][]byte

	// Released reports whether Release was called.
	Released bool
}

// NewNullEngine creates a null engine with the given grid size.
func NewNullEngine(cols, rows int) *NullEngine {
	return &NullEngine{
		cols:  cols,
		rows:  rows,
		cells: make(map[[2]int]Cell),
	}
}

// SetCell places a cell at (col, row) for the next draw pass.
func (e *NullEngine) SetCell(cell Cell) {
	e.cells[[2]int{cell.Col, cell.Row}] = cell
	e.age++
}

// SetCursor moves the cursor.
func (e *NullEngine) SetCursor(x, y int) {
	e.cursorX, e.cursorY = x, y
}

func (e *NullEngine) Feed(p []byte) {
	chunk := make([]byte, len(p))
	copy(chunk, p)
	e.Fed = append(e.Fed, chunk)
	e.cursorX += len(p)
	e.age++
}

func (e *NullEngine) Resize(cols, rows int) {
	e.cols, e.rows = cols, rows
	e.age++
}

func (e *NullEngine) Cursor() (x, y int) {
	return e.cursorX, e.cursorY
}

// Draw reports every grid position, using a stored cell where one was
// poked and an unwritten (empty-rune) cell elsewhere.
func (e *NullEngine) Draw(fn DrawFunc, age Age) Age {
	for row := 0; row < e.rows; row++ {
		for col := 0; col < e.cols; col++ {
			cell, ok := e.cells[[2]int{col, row}]
			if !ok {
				cell = Cell{Col: col, Row: row, Width: 1, FG: -1, BG: -1}
			}
			cell.Age = e.age
			fn(cell)
		}
	}
	return e.age
}

// Dump renders the poked cells as newline-joined rows, blank-filled.
func (e *NullEngine) Dump() string {
	rows := make([]string, e.rows)
	for row := 0; row < e.rows; row++ {
		var b strings.Builder
		for col := 0; col < e.cols; col++ {
			if cell, ok := e.cells[[2]int{col, row}]; ok && len(cell.Runes) > 0 {
				b.WriteString(string(cell.Runes))
			} else {
				b.WriteByte(' ')
			}
		}
		rows[row] = b.String()
	}
	return strings.Join(rows, "\n")
}

func (e *NullEngine) Release() {
	e.Released = true
}
