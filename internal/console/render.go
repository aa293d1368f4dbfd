package console

import (
	"github.com/dhowlett/conview/internal/console/core"
	"github.com/dhowlett/conview/internal/vt"
)

// Draw repaints the whole widget onto the bound surface: background
// fill, cursor, then one unconditional pass over every cell the engine
// reports. The cursor is painted before the glyph pass, so a block
// cursor sits under the glyph drawn on top of it; empty cells are
// normally skipped, which is what keeps the cursor visible there. This
// ordering is a deliberate visual choice, kept rather than reordered.
func (c *Console) Draw() {
	if c.surf == nil {
		return
	}
	defer c.surf.Flush()
	c.dirty = false

	w, h := c.surf.Size()
	c.surf.FillRect(0, 0, w, h, c.palette.DefaultBG)

	// Without an engine, painting stops at the background.
	if !c.adapter.Constructed() {
		return
	}

	c.drawCursor()
	c.adapter.Draw(c.drawCell)
}

func (c *Console) drawCursor() {
	style := c.opts.CursorStyle
	if style == CursorHidden {
		return
	}
	// Only a block cursor shows without input focus.
	if !c.focused && style != CursorBlock {
		return
	}

	m := c.metrics()
	cx, cy := c.adapter.Cursor()
	x, y := cx*m.CharWidth, cy*m.CharHeight

	switch style {
	case CursorBlock:
		c.surf.FillRect(x, y, m.CharWidth, m.CharHeight, c.palette.DefaultFG)
	case CursorUnderline:
		// Bar shapes clamp to the cell when the metrics are smaller
		// than the 2px bar, as on the 1x1 tcell surface.
		h := 2
		if h > m.CharHeight {
			h = m.CharHeight
		}
		c.surf.FillRect(x, y+m.CharHeight-h, m.CharWidth, h, c.palette.DefaultFG)
	case CursorIBeam:
		w := 2
		if w > m.CharWidth {
			w = m.CharWidth
		}
		bx := x + m.CharWidth/2 - 1
		if bx < x {
			bx = x
		}
		c.surf.FillRect(bx, y, w, m.CharHeight, c.palette.DefaultFG)
	}
}

func (c *Console) drawCell(cell vt.Cell) {
	selected := c.sel.Contains(cell.Col, cell.Row)
	empty := len(cell.Runes) == 0

	// Whitespace with no visual effect is skipped. Selected cells are
	// always painted so the overlay shows.
	if empty && !selected && !c.opts.DrawEmptyCells {
		return
	}

	style := core.Style{
		Foreground: c.palette.Lookup(cell.FG, c.palette.DefaultFG),
		Background: c.palette.Lookup(cell.BG, c.palette.DefaultBG),
	}
	if cell.Bold && c.opts.UseBold {
		style.Attr = style.Attr.With(core.AttrBold)
	}
	if cell.Underline {
		style.Attr = style.Attr.With(core.AttrUnderline)
	}
	if cell.Inverse {
		style = style.Invert()
	}

	m := c.metrics()
	width := cell.Width
	if width < 1 {
		width = 1
	}
	x, y := cell.Col*m.CharWidth, cell.Row*m.CharHeight
	pw, ph := width*m.CharWidth, m.CharHeight

	c.surf.FillRect(x, y, pw, ph, style.Background)
	if selected {
		c.surf.FillRect(x, y, pw, ph, c.palette.SelectionBG)
	}

	if !empty {
		c.surf.DrawText(x, y+m.CharHeight-3, string(cell.Runes), style)
	}
}
