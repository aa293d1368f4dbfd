package surface

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dhowlett/conview/internal/console/core"
)

// Terminal implements Surface on a tcell screen. Terminal cells have no
// sub-cell resolution, so the character metrics are 1x1 and pixel
// coordinates coincide with cell coordinates.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal wraps an initialized tcell screen. The caller owns the
// screen's lifecycle (Init and Fini).
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Metrics() Metrics {
	return Metrics{CharWidth: 1, CharHeight: 1}
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) FillRect(x, y, width, height int, c core.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	opaque := c.A == 255
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			bg := c
			if !opaque {
				under, _ := t.backgroundAt(col, row)
				bg = under.Composite(c)
			}
			style := tcell.StyleDefault.Background(toTcellColor(bg))
			t.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (t *Terminal) DrawText(x, y int, text string, style core.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Text baselines sit CharHeight-3 pixels below the row top; undo
	// that to recover the cell row.
	m := t.Metrics()
	row := (y - m.CharHeight + 3) / m.CharHeight
	col := x / m.CharWidth

	base := convertStyle(style)
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		runes := gr.Runes()
		var comb []rune
		if len(runes) > 1 {
			comb = runes[1:]
		}
		// The cell's background was already painted by FillRect,
		// selection overlay included. Keep what is on screen instead
		// of stamping the style's own background over it.
		ts := base
		if under, ok := t.backgroundAt(col, row); ok {
			ts = base.Background(toTcellColor(under))
		}
		t.screen.SetContent(col, row, runes[0], comb, ts)
		w := runewidth.StringWidth(gr.Str())
		if w < 1 {
			w = 1
		}
		col += w
	}
}

func (t *Terminal) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

// backgroundAt reads the background color already on screen at a cell.
// The second return is false for cells still on the terminal's default
// background, which has no RGB value to read. Callers hold t.mu.
func (t *Terminal) backgroundAt(col, row int) (core.Color, bool) {
	_, _, style, _ := t.screen.GetContent(col, row) //nolint:staticcheck // GetContent is the correct API
	_, bg, _ := style.Decompose()
	r, g, b := bg.TrueColor().RGB()
	if r < 0 {
		return core.Color{}, false
	}
	return core.ColorFromRGB(uint8(r), uint8(g), uint8(b)), true
}

// convertStyle translates a resolved cell style to tcell. Inverse video
// is resolved into swapped colors before drawing, so only bold and
// underline carry through as attributes.
func convertStyle(s core.Style) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(toTcellColor(s.Foreground)).
		Background(toTcellColor(s.Background))
	if s.Attr.Has(core.AttrBold) {
		st = st.Bold(true)
	}
	if s.Attr.Has(core.AttrUnderline) {
		st = st.Underline(true)
	}
	return st
}

func toTcellColor(c core.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
