package vt

import (
	"io"
	"strings"

	"github.com/hinshun/vt10x"
	"github.com/mattn/go-runewidth"
)

// vt10x glyph mode bits. These mirror the interpreter's attribute flags,
// which it exposes only as a raw mask.
const (
	vt10xAttrReverse   = 0x01
	vt10xAttrUnderline = 0x02
	vt10xAttrBold      = 0x04
)

// VT10X is an Engine backed by the vt10x terminal emulation library.
type VT10X struct {
	term vt10x.Terminal
	age  Age
}

// NewVT10X creates an engine with the given grid size. Engine-initiated
// replies (capability responses) are written to reply; a nil reply
// discards them.
func NewVT10X(cols, rows int, reply io.Writer) *VT10X {
	opts := []vt10x.TerminalOption{vt10x.WithSize(cols, rows)}
	if reply != nil {
		opts = append(opts, vt10x.WithWriter(reply))
	}
	return &VT10X{term: vt10x.New(opts...)}
}

// Feed pushes bytes into the interpreter. Malformed or overlong escape
// data is the interpreter's own recovery concern; nothing surfaces here.
func (e *VT10X) Feed(p []byte) {
	_, _ = e.term.Write(p)
	e.age++
}

// Resize sets the grid dimensions.
func (e *VT10X) Resize(cols, rows int) {
	e.term.Resize(cols, rows)
	e.age++
}

// Cursor returns the cursor position in cell coordinates.
func (e *VT10X) Cursor() (x, y int) {
	cur := e.term.Cursor()
	return cur.X, cur.Y
}

// Draw reports every visible cell. vt10x keeps no per-cell age, so the
// age token only gates skipping the whole pass: a token at or beyond the
// engine's current age means nothing changed since that pass.
func (e *VT10X) Draw(fn DrawFunc, age Age) Age {
	if age != 0 && age >= e.age {
		return e.age
	}

	e.term.Lock()
	defer e.term.Unlock()

	cols, rows := e.term.Size()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			glyph := e.term.Cell(col, row)

			cell := Cell{
				Col:       col,
				Row:       row,
				Width:     1,
				FG:        colorIndex(glyph.FG),
				BG:        colorIndex(glyph.BG),
				Bold:      glyph.Mode&vt10xAttrBold != 0,
				Underline: glyph.Mode&vt10xAttrUnderline != 0,
				Inverse:   glyph.Mode&vt10xAttrReverse != 0,
				Age:       e.age,
			}

			// NUL means the cell was never written; vt10x blanks
			// cleared cells with a space, which stays a real glyph so
			// its background is still painted.
			if glyph.Char != 0 {
				cell.Runes = []rune{glyph.Char}
				if w := runewidth.RuneWidth(glyph.Char); w > 1 {
					cell.Width = w
				}
			}

			fn(cell)
		}
	}
	return e.age
}

// Dump returns the screen content as newline-joined row strings.
func (e *VT10X) Dump() string {
	return strings.TrimSuffix(e.term.String(), "\n")
}

// Release drops the terminal state.
func (e *VT10X) Release() {
	e.term = nil
}

// colorIndex maps a vt10x color to a 16-entry palette index. True-color
// values and the interpreter's default markers carry no palette index.
func colorIndex(c vt10x.Color) int {
	if c < 256 {
		return int(c)
	}
	return -1
}
