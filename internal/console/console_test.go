package console

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dhowlett/conview/internal/console/core"
	"github.com/dhowlett/conview/internal/console/surface"
	"github.com/dhowlett/conview/internal/source"
	"github.com/dhowlett/conview/internal/vt"
)

const (
	charW = 8
	charH = 16
)

// newTestConsole builds a console over a NullEngine and a memory
// surface sized for a cols x rows grid at 8x16 character metrics.
func newTestConsole(t *testing.T, cols, rows int) (*Console, *vt.NullEngine, *surface.Memory) {
	t.Helper()

	engine := vt.NewNullEngine(cols, rows)
	opts := DefaultOptions()
	opts.Size = core.GridSize{Cols: cols, Rows: rows}
	opts.Logger = slog.New(slog.DiscardHandler)

	c := NewWithEngine(opts, func(core.GridSize, io.Writer) (vt.Engine, error) {
		return engine, nil
	})
	mem := surface.NewMemory(cols*charW, rows*charH, surface.Metrics{CharWidth: charW, CharHeight: charH})
	c.SetSurface(mem)
	return c, engine, mem
}

func TestGridSizeClampAndQuery(t *testing.T) {
	c, _, _ := newTestConsole(t, 80, 24)

	c.SetGridSize(100, 30)
	if got := c.GridSize(); got.Cols != 100 || got.Rows != 30 {
		t.Errorf("GridSize() = %+v, want 100x30", got)
	}

	c.SetGridSize(0, -5)
	if got := c.GridSize(); got.Cols != 1 || got.Rows != 1 {
		t.Errorf("GridSize() after clamp = %+v, want 1x1", got)
	}
}

func TestDrawFillsBackgroundFirst(t *testing.T) {
	c, _, mem := newTestConsole(t, 4, 2)

	c.Draw()

	if len(mem.Fills) == 0 {
		t.Fatal("Draw painted nothing")
	}
	first := mem.Fills[0]
	if first.X != 0 || first.Y != 0 || first.Width != 4*charW || first.Height != 2*charH {
		t.Errorf("first fill = %+v, want full-surface background", first)
	}
	if first.Color != c.Palette().DefaultBG {
		t.Errorf("background color = %v, want default background", first.Color)
	}
	if mem.Flushes != 1 {
		t.Errorf("flushes = %d, want 1", mem.Flushes)
	}
	if c.Dirty() {
		t.Error("Draw should clear the dirty flag")
	}
}

func TestDrawCellGeometry(t *testing.T) {
	c, engine, mem := newTestConsole(t, 4, 2)
	engine.SetCell(vt.Cell{Runes: []rune{'A'}, Width: 1, Col: 2, Row: 1, FG: -1, BG: -1})

	c.Draw()

	// Baseline sits charH-3 pixels below the cell top.
	op := mem.TextAt(2*charW, 1*charH+charH-3)
	if op == nil {
		t.Fatalf("no glyph at expected baseline; texts = %+v", mem.Texts)
	}
	if op.Text != "A" {
		t.Errorf("glyph text = %q, want %q", op.Text, "A")
	}
	if op.Style.Foreground != c.Palette().DefaultFG {
		t.Errorf("unset index should resolve to default foreground, got %v", op.Style.Foreground)
	}
}

func TestDrawPaletteLookup(t *testing.T) {
	c, engine, mem := newTestConsole(t, 4, 1)
	engine.SetCell(vt.Cell{Runes: []rune{'x'}, Width: 1, Col: 0, Row: 0, FG: 1, BG: 2})
	// Out-of-range indices fall back to the defaults.
	engine.SetCell(vt.Cell{Runes: []rune{'y'}, Width: 1, Col: 1, Row: 0, FG: 16, BG: -1})

	c.Draw()

	p := c.Palette()
	if op := mem.TextAt(0, charH-3); op == nil || op.Style.Foreground != p.Colors[1] || op.Style.Background != p.Colors[2] {
		t.Errorf("indexed cell style = %+v, want palette colors 1/2", op)
	}
	if op := mem.TextAt(charW, charH-3); op == nil || op.Style.Foreground != p.DefaultFG || op.Style.Background != p.DefaultBG {
		t.Errorf("out-of-range cell style = %+v, want defaults", op)
	}
}

func TestDrawInverseSwapsColors(t *testing.T) {
	c, engine, mem := newTestConsole(t, 2, 1)
	engine.SetCell(vt.Cell{Runes: []rune{'i'}, Width: 1, Col: 0, Row: 0, FG: 1, BG: 2, Inverse: true})

	c.Draw()

	p := c.Palette()
	op := mem.TextAt(0, charH-3)
	if op == nil {
		t.Fatal("inverse cell not drawn")
	}
	if op.Style.Foreground != p.Colors[2] || op.Style.Background != p.Colors[1] {
		t.Errorf("inverse style = %+v, want swapped palette colors", op.Style)
	}
}

func TestDrawBoldGating(t *testing.T) {
	tests := []struct {
		name     string
		useBold  bool
		cellBold bool
		want     bool
	}{
		{"both set", true, true, true},
		{"global off", false, true, false},
		{"cell off", true, false, false},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, engine, mem := newTestConsole(t, 2, 1)
			c.SetUseBold(tt.useBold)
			engine.SetCell(vt.Cell{Runes: []rune{'b'}, Width: 1, Col: 0, Row: 0, FG: -1, BG: -1, Bold: tt.cellBold})

			c.Draw()

			op := mem.TextAt(0, charH-3)
			if op == nil {
				t.Fatal("cell not drawn")
			}
			if got := op.Style.Attr.Has(core.AttrBold); got != tt.want {
				t.Errorf("bold = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDrawSkipsEmptyCells(t *testing.T) {
	c, _, mem := newTestConsole(t, 4, 2)

	c.Draw()

	// Background plus block cursor, nothing per cell.
	if len(mem.Fills) != 2 {
		t.Errorf("fills = %d, want background and cursor only", len(mem.Fills))
	}
	if len(mem.Texts) != 0 {
		t.Errorf("texts = %d, want none for an empty grid", len(mem.Texts))
	}
}

func TestDrawEmptyCellsFlag(t *testing.T) {
	c, _, mem := newTestConsole(t, 4, 2)
	c.SetDrawEmptyCells(true)

	c.Draw()

	// Background + cursor + one fill per cell.
	if want := 2 + 4*2; len(mem.Fills) != want {
		t.Errorf("fills = %d, want %d with empty-cell drawing on", len(mem.Fills), want)
	}
}

func TestDrawSelectionOverlayAfterBackground(t *testing.T) {
	c, engine, mem := newTestConsole(t, 4, 1)
	engine.SetCell(vt.Cell{Runes: []rune{'s'}, Width: 1, Col: 1, Row: 0, FG: -1, BG: -1})

	c.MouseDown(1*charW, 0)
	c.MouseMove(1*charW, 0)
	mem.Reset()

	c.Draw()

	var cellFills []surface.FillOp
	for _, f := range mem.Fills {
		if f.X == 1*charW && f.Y == 0 && f.Width == charW {
			cellFills = append(cellFills, f)
		}
	}
	if len(cellFills) != 2 {
		t.Fatalf("selected cell fills = %+v, want normal background then overlay", cellFills)
	}
	if cellFills[0].Color != c.Palette().DefaultBG {
		t.Errorf("first fill = %v, want normal background", cellFills[0].Color)
	}
	if cellFills[1].Color != c.Palette().SelectionBG {
		t.Errorf("second fill = %v, want selection overlay", cellFills[1].Color)
	}
}

func TestDrawSelectedEmptyCellPainted(t *testing.T) {
	c, _, mem := newTestConsole(t, 4, 1)

	// Select an empty cell; it must be painted despite being empty.
	c.MouseDown(2*charW, 0)
	c.MouseMove(2*charW, 0)
	mem.Reset()

	c.Draw()

	found := false
	for _, f := range mem.Fills {
		if f.X == 2*charW && f.Color == c.Palette().SelectionBG {
			found = true
		}
	}
	if !found {
		t.Error("selected empty cell should get a selection overlay fill")
	}
}

func TestCursorDrawnBeforeGlyphs(t *testing.T) {
	c, engine, mem := newTestConsole(t, 4, 1)
	engine.SetCursor(1, 0)
	c.adapter.SyncCursor()
	engine.SetCell(vt.Cell{Runes: []rune{'g'}, Width: 1, Col: 1, Row: 0, FG: -1, BG: -1})

	c.Draw()

	// Fill order: background, cursor block, then the cell background.
	if len(mem.Fills) < 3 {
		t.Fatalf("fills = %+v, want background, cursor, cell", mem.Fills)
	}
	cursor := mem.Fills[1]
	if cursor.X != 1*charW || cursor.Y != 0 || cursor.Color != c.Palette().DefaultFG {
		t.Errorf("second fill = %+v, want block cursor at cell (1,0)", cursor)
	}
}

func TestCursorFocusRules(t *testing.T) {
	tests := []struct {
		name    string
		style   CursorStyle
		focused bool
		want    bool
	}{
		{"block unfocused", CursorBlock, false, true},
		{"block focused", CursorBlock, true, true},
		{"underline unfocused", CursorUnderline, false, false},
		{"underline focused", CursorUnderline, true, true},
		{"ibeam unfocused", CursorIBeam, false, false},
		{"ibeam focused", CursorIBeam, true, true},
		{"hidden focused", CursorHidden, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, mem := newTestConsole(t, 4, 2)
			c.SetCursorStyle(tt.style)
			c.SetFocus(tt.focused)

			c.Draw()

			// Any fill beyond the background is the cursor.
			if got := len(mem.Fills) > 1; got != tt.want {
				t.Errorf("cursor drawn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCursorShapes(t *testing.T) {
	c, engine, mem := newTestConsole(t, 4, 2)
	engine.SetCursor(2, 1)
	c.adapter.SyncCursor()
	c.SetFocus(true)

	c.SetCursorStyle(CursorUnderline)
	mem.Reset()
	c.Draw()
	if f := mem.Fills[1]; f.Y != 1*charH+charH-2 || f.Height != 2 || f.Width != charW {
		t.Errorf("underline cursor = %+v, want 2px bar at cell bottom", f)
	}

	c.SetCursorStyle(CursorIBeam)
	mem.Reset()
	c.Draw()
	if f := mem.Fills[1]; f.X != 2*charW+charW/2-1 || f.Width != 2 || f.Height != charH {
		t.Errorf("ibeam cursor = %+v, want 2px bar at cell center", f)
	}
}

func TestCursorShapesClampToCellMetrics(t *testing.T) {
	c, engine, _ := newTestConsole(t, 4, 3)
	engine.SetCursor(2, 1)
	c.adapter.SyncCursor()
	c.SetFocus(true)

	// 1x1 metrics, as on the tcell surface: bar shapes must stay
	// inside the cursor cell instead of bleeding into neighbors.
	mem := surface.NewMemory(4, 3, surface.Metrics{CharWidth: 1, CharHeight: 1})
	c.SetSurface(mem)

	c.SetCursorStyle(CursorUnderline)
	mem.Reset()
	c.Draw()
	if f := mem.Fills[1]; f.X != 2 || f.Y != 1 || f.Width != 1 || f.Height != 1 {
		t.Errorf("underline cursor = %+v, want clamped to cell (2,1)", f)
	}

	c.SetCursorStyle(CursorIBeam)
	mem.Reset()
	c.Draw()
	if f := mem.Fills[1]; f.X != 2 || f.Y != 1 || f.Width != 1 || f.Height != 1 {
		t.Errorf("ibeam cursor = %+v, want clamped to cell (2,1)", f)
	}
}

func TestFeedSyncsCursorAndDirty(t *testing.T) {
	c, engine, _ := newTestConsole(t, 10, 2)
	c.Draw() // clears dirty

	c.Feed([]byte("abc"))

	if !c.Dirty() {
		t.Error("Feed should mark the console dirty")
	}
	ex, ey := engine.Cursor()
	cx, cy := c.adapter.Cursor()
	if cx != ex || cy != ey {
		t.Errorf("adapter cursor (%d,%d) drifted from engine (%d,%d)", cx, cy, ex, ey)
	}
}

func TestFeedFiresOnData(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 2)

	var got []byte
	c.OnData(func(p []byte) { got = append(got, p...) })

	c.Feed([]byte("hi"))
	if string(got) != "hi" {
		t.Errorf("OnData saw %q, want %q", got, "hi")
	}
}

func TestDegradedConsolePaintsBackgroundOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.DiscardHandler)
	c := NewWithEngine(opts, func(core.GridSize, io.Writer) (vt.Engine, error) {
		return nil, errors.New("engine unavailable")
	})
	mem := surface.NewMemory(80, 48, surface.Metrics{CharWidth: charW, CharHeight: charH})
	c.SetSurface(mem)

	if c.Constructed() {
		t.Fatal("console should report not-constructed after factory failure")
	}

	// Feeds and resizes are silent no-ops; painting stops at the
	// background fill.
	c.Feed([]byte("ignored"))
	c.SetGridSize(10, 5)
	c.Draw()

	if len(mem.Fills) != 1 || len(mem.Texts) != 0 {
		t.Errorf("degraded draw = %d fills %d texts, want background only", len(mem.Fills), len(mem.Texts))
	}
	if mem.Flushes != 1 {
		t.Error("degraded draw should still flush")
	}
	if c.DumpScreen() != "" {
		t.Error("degraded console should dump empty screen")
	}
}

func TestPixelCellRoundTrip(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 4)

	pos := c.PixelToCell(2*charW+3, 3*charH+7)
	if pos.Col != 2 || pos.Row != 3 {
		t.Errorf("PixelToCell = %+v, want (2,3)", pos)
	}
	x, y := c.CellToPixel(pos)
	if x != 2*charW || y != 3*charH {
		t.Errorf("CellToPixel = (%d,%d), want cell origin", x, y)
	}
}

func TestFitWidgetToGrid(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 4)

	w, h := c.FitWidgetToGrid()
	if w != 10*charW || h != 4*charH {
		t.Errorf("FitWidgetToGrid = (%d,%d), want (%d,%d)", w, h, 10*charW, 4*charH)
	}
}

func TestFitGridToWidget(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 4)
	c.SetSurface(surface.NewMemory(20*charW+5, 6*charH+2, surface.Metrics{CharWidth: charW, CharHeight: charH}))

	c.FitGridToWidget()
	if got := c.GridSize(); got.Cols != 20 || got.Rows != 6 {
		t.Errorf("GridSize after fit = %+v, want 20x6", got)
	}
}

func TestMouseSelectionLifecycle(t *testing.T) {
	c, engine, _ := newTestConsole(t, 10, 3)
	engine.SetCell(vt.Cell{Runes: []rune{'a'}, Width: 1, Col: 2, Row: 0, FG: -1, BG: -1})

	c.MouseDown(2*charW, 0)
	c.MouseMove(5*charW, 0)

	start, end, ok := c.SelectionRange()
	if !ok || start.Col != 2 || end.Col != 5 {
		t.Fatalf("range = %+v..%+v ok=%v, want (2,0)..(5,0)", start, end, ok)
	}
	if !c.sel.Contains(3, 0) {
		t.Error("mid-drag cell should be contained")
	}

	c.MouseUp(5*charW, 0)
	if c.sel.Contains(3, 0) {
		t.Error("highlight should end on release")
	}
	if _, _, ok := c.SelectionRange(); !ok {
		t.Error("range should stay addressable after release")
	}

	// Moves with no drag in progress do nothing.
	c.MouseMove(8*charW, 2*charH)
	if _, end, _ := c.SelectionRange(); end.Col != 5 {
		t.Error("move without drag must not extend the range")
	}
}

func TestSelectedText(t *testing.T) {
	c, engine, _ := newTestConsole(t, 10, 1)
	for i, r := range "abcdef" {
		engine.SetCell(vt.Cell{Runes: []rune{r}, Width: 1, Col: i, Row: 0, FG: -1, BG: -1})
	}

	c.MouseDown(2*charW, 0)
	c.MouseUp(5*charW, 0)

	if got := c.SelectedText(); got != "cde" {
		t.Errorf("SelectedText() = %q, want %q", got, "cde")
	}
}

func TestHandleKeyClearsSelection(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 2)
	c.MouseDown(0, 0)
	c.MouseUp(3*charW, 0)

	c.HandleKey(KeyRune, ModNone, 'x')

	if _, _, ok := c.SelectionRange(); ok {
		t.Error("typing should discard the selection range")
	}
}

// fakeSource blocks on read and records writes.
type fakeSource struct {
	io.Reader
	writes bytes.Buffer
}

func (s *fakeSource) Write(p []byte) (int, error) { return s.writes.Write(p) }

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	return &fakeSource{Reader: pr}
}

func TestAttachDetachReader(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 2)
	src := newFakeSource(t)

	var detached *source.Reader
	c.OnDetach(func(r *source.Reader) { detached = r })

	r := c.AttachReader(src)
	if r == nil || r.Source() != src {
		t.Fatal("AttachReader should return a reader bound to the source")
	}
	if !r.Running() {
		t.Error("attached reader should be started")
	}

	got := c.DetachReader()
	if got != r {
		t.Error("DetachReader should hand back the same reader instance")
	}
	if detached != r {
		t.Error("OnDetach should fire with the detached reader")
	}
	if c.DetachReader() != nil {
		t.Error("second detach should return nil")
	}
}

func TestAttachReplacesReader(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 2)

	var detached []*source.Reader
	c.OnDetach(func(r *source.Reader) { detached = append(detached, r) })

	first := c.AttachReader(newFakeSource(t))
	second := c.AttachReader(newFakeSource(t))

	if len(detached) != 1 || detached[0] != first {
		t.Errorf("attaching again should detach the first reader, got %v", detached)
	}
	if c.DetachReader() != second {
		t.Error("current reader should be the second one")
	}
}

func TestEngineReplyForwardedToSource(t *testing.T) {
	engine := vt.NewNullEngine(10, 2)
	var reply io.Writer

	opts := DefaultOptions()
	opts.Logger = slog.New(slog.DiscardHandler)
	c := NewWithEngine(opts, func(_ core.GridSize, w io.Writer) (vt.Engine, error) {
		reply = w
		return engine, nil
	})

	src := newFakeSource(t)
	c.AttachReader(src)

	// An engine-initiated response must reach the source write path
	// verbatim.
	if _, err := reply.Write([]byte("\x1b[?1;2c")); err != nil {
		t.Fatalf("reply write: %v", err)
	}
	if got := src.writes.String(); got != "\x1b[?1;2c" {
		t.Errorf("source received %q, want the reply verbatim", got)
	}
}

func TestWriteToSourceWithoutReader(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 2)

	n, err := c.WriteToSource([]byte("lost"))
	if err != nil || n != 4 {
		t.Errorf("WriteToSource = (%d, %v), want dropped bytes reported complete", n, err)
	}
}

func TestHandleKeyWritesSequence(t *testing.T) {
	c, _, _ := newTestConsole(t, 10, 2)
	src := newFakeSource(t)
	c.AttachReader(src)

	c.HandleKey(KeyUp, ModNone, 0)
	c.HandleKey(KeyRune, ModCtrl, 'c')
	c.HandleKey(KeyRune, ModNone, 'é')

	if got := src.writes.String(); got != "\x1b[A\x03é" {
		t.Errorf("source received %q, want arrow, ctrl byte, utf-8 rune", got)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		mod  Mod
		r    rune
		want string
	}{
		{"enter", KeyEnter, ModNone, 0, "\n"},
		{"tab", KeyTab, ModNone, 0, "\t"},
		{"backspace", KeyBackspace, ModNone, 0, "\x08"},
		{"escape", KeyEscape, ModNone, 0, "\x1b"},
		{"home", KeyHome, ModNone, 0, "\x1b[H"},
		{"end", KeyEnd, ModNone, 0, "\x1b[F"},
		{"left", KeyLeft, ModNone, 0, "\x1b[D"},
		{"page down", KeyPageDown, ModNone, 0, "\x1b[6~"},
		{"f1", KeyF1, ModNone, 0, "\x1b[11~"},
		{"f5 before gap", KeyF5, ModNone, 0, "\x1b[15~"},
		{"f6 after gap", KeyF6, ModNone, 0, "\x1b[17~"},
		{"f11 after second gap", KeyF11, ModNone, 0, "\x1b[23~"},
		{"ctrl-a", KeyRune, ModCtrl, 'a', "\x01"},
		{"ctrl-Z upper", KeyRune, ModCtrl, 'Z', "\x1a"},
		{"plain rune", KeyRune, ModNone, 'q', "q"},
		{"unicode rune", KeyRune, ModNone, '界', "界"},
		{"unknown key", KeyNone, ModNone, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Encode(tt.key, tt.mod, tt.r)); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectedGlyphHighlightOnTerminalSurface(t *testing.T) {
	engine := vt.NewNullEngine(4, 1)
	engine.SetCell(vt.Cell{Runes: []rune{'a'}, Width: 1, Col: 0, Row: 0, FG: -1, BG: -1})
	engine.SetCell(vt.Cell{Runes: []rune{'b'}, Width: 1, Col: 1, Row: 0, FG: -1, BG: -1})

	opts := DefaultOptions()
	opts.Size = core.GridSize{Cols: 4, Rows: 1}
	opts.CursorStyle = CursorHidden
	opts.Logger = slog.New(slog.DiscardHandler)
	c := NewWithEngine(opts, func(core.GridSize, io.Writer) (vt.Engine, error) {
		return engine, nil
	})

	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("initializing simulation screen: %v", err)
	}
	sim.SetSize(4, 1)
	t.Cleanup(sim.Fini)
	c.SetSurface(surface.NewTerminal(sim))

	// Drag over cell (1,0) so it is selected while 'a' at (0,0) stays
	// plain, then compare the two glyph cells' backgrounds on screen.
	c.MouseDown(1, 0)
	c.MouseMove(1, 0)
	c.Draw()

	cellBG := func(col int) (int32, int32, int32) {
		t.Helper()
		_, _, style, _ := sim.GetContent(col, 0)
		_, bg, _ := style.Decompose()
		return bg.TrueColor().RGB()
	}

	pr, pg, pb := cellBG(0)
	sr, sg, sb := cellBG(1)
	if pr == sr && pg == sg && pb == sb {
		t.Fatalf("selected glyph background (%d,%d,%d) equals plain background, overlay lost", sr, sg, sb)
	}

	d := c.Palette().DefaultBG
	if sr == int32(d.R) && sg == int32(d.G) && sb == int32(d.B) {
		t.Error("selected glyph cell still shows the default background")
	}
}
