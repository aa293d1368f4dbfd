package console

import (
	"io"
	"log/slog"

	"github.com/dhowlett/conview/internal/console/core"
	"github.com/dhowlett/conview/internal/console/selection"
	"github.com/dhowlett/conview/internal/console/surface"
	"github.com/dhowlett/conview/internal/source"
	"github.com/dhowlett/conview/internal/vt"
)

// CursorStyle defines how the cursor appears.
type CursorStyle int

const (
	CursorBlock CursorStyle = iota
	CursorUnderline
	CursorIBeam
	CursorHidden
)

// Options configures a Console at construction.
type Options struct {
	// Palette is the 16-color table plus defaults.
	Palette core.Palette

	// Size is the initial character grid; clamped to at least 1x1.
	Size core.GridSize

	// CursorStyle selects the cursor shape.
	CursorStyle CursorStyle

	// UseBold gates bold rendering globally. A cell renders bold only
	// when both this flag and the cell's own bold attribute are set.
	UseBold bool

	// DrawEmptyCells forces empty, unselected cells to be painted.
	DrawEmptyCells bool

	// ChunkSize is the per-read buffer size for attached readers.
	ChunkSize int

	// Logger receives diagnostics. Nil uses slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns the standard configuration: an 80x24 grid,
// the default palette, a block cursor, and bold rendering enabled.
func DefaultOptions() Options {
	return Options{
		Palette:     core.DefaultPalette(),
		Size:        core.GridSize{Cols: 80, Rows: 24},
		CursorStyle: CursorBlock,
		UseBold:     true,
		ChunkSize:   source.DefaultChunkSize,
	}
}

// EngineFactory constructs a terminal-state engine for a grid. The
// reply writer receives engine-initiated responses (capability queries
// and the like) and must route them back to the byte source.
type EngineFactory func(size core.GridSize, reply io.Writer) (vt.Engine, error)

// Console is the terminal display widget. It owns the grid, palette,
// selection, and cursor state, feeds bytes to the terminal-state
// engine, and paints onto a Surface. All methods must be called from
// the UI thread; attached readers deliver chunks over a channel that
// the host forwards to Feed from that thread.
type Console struct {
	opts    Options
	palette core.Palette
	size    core.GridSize

	adapter *vt.Adapter
	sel     selection.Model
	surf    surface.Surface
	reader  *source.Reader

	focused  bool
	dirty    bool
	dragging bool

	onData   func([]byte)
	onDetach func(*source.Reader)

	log *slog.Logger
}

// New creates a console backed by the built-in vt10x engine.
func New(opts Options) *Console {
	return NewWithEngine(opts, func(size core.GridSize, reply io.Writer) (vt.Engine, error) {
		return vt.NewVT10X(size.Cols, size.Rows, reply), nil
	})
}

// NewWithEngine creates a console with a caller-supplied engine
// factory. If the factory fails the console still comes up, but in a
// degraded state: feeds and resizes are no-ops and painting stops at
// the background fill. Constructed reports which state applies.
func NewWithEngine(opts Options, factory EngineFactory) *Console {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = source.DefaultChunkSize
	}
	opts.Size = opts.Size.Clamp()

	c := &Console{
		opts:    opts,
		palette: opts.Palette,
		size:    opts.Size,
		log:     opts.Logger,
	}

	engine, err := factory(opts.Size, replyWriter{c})
	if err != nil {
		c.log.Warn("engine construction failed", "error", err)
		engine = nil
	}
	c.adapter = vt.NewAdapter(engine, c.log)
	return c
}

// replyWriter routes engine-initiated writes back to the byte source.
// The engine only writes from within Feed, so this stays on the UI
// thread.
type replyWriter struct {
	c *Console
}

func (w replyWriter) Write(p []byte) (int, error) {
	return w.c.WriteToSource(p)
}

// Constructed reports whether the terminal-state engine came up.
func (c *Console) Constructed() bool {
	return c.adapter.Constructed()
}

// SetSurface binds the drawing target. The console keeps no prior
// surface state; the next Draw repaints everything.
func (c *Console) SetSurface(s surface.Surface) {
	c.surf = s
	c.dirty = true
}

// AttachReader binds a byte source to the console through a new
// reader and starts it. Any previously attached reader is detached
// first. The host must drain the returned reader's chunk channel and
// forward each chunk to Feed on the UI thread.
func (c *Console) AttachReader(src source.Source) *source.Reader {
	if c.reader != nil {
		c.DetachReader()
	}
	r := source.NewReaderSize(src, c.opts.ChunkSize, c.log)
	c.reader = r
	r.Start()
	c.log.Debug("reader attached", "reader", r.ID())
	return r
}

// DetachReader unbinds the current reader and returns it. The console
// never owns or stops the reader; the host disposes of it. Fires the
// detach callback so the host can observe it even when detachment
// happens inside Close.
func (c *Console) DetachReader() *source.Reader {
	r := c.reader
	if r == nil {
		return nil
	}
	c.reader = nil
	c.log.Debug("reader detached", "reader", r.ID())
	if c.onDetach != nil {
		c.onDetach(r)
	}
	return r
}

// Close detaches any reader and releases the engine. The console is
// unusable afterward except as a paint target for the background.
func (c *Console) Close() {
	c.DetachReader()
	c.adapter.Release()
}

// Feed pushes received bytes into the terminal-state engine and
// re-syncs the cursor. Call from the UI thread only.
func (c *Console) Feed(p []byte) {
	if c.adapter.Feed(p) {
		c.dirty = true
	}
	if c.onData != nil && len(p) > 0 {
		c.onData(p)
	}
}

// WriteToSource sends bytes to the attached source, best effort. A
// short write is reported through the count, not retried. With no
// reader attached the bytes are dropped.
func (c *Console) WriteToSource(p []byte) (int, error) {
	if c.reader == nil {
		c.log.Debug("write with no reader attached", "bytes", len(p))
		return len(p), nil
	}
	n, err := c.reader.Write(p)
	if err != nil {
		c.log.Warn("source write failed", "error", err)
	}
	return n, err
}

// SetGridSize resizes the character grid. Dimensions below 1 are
// clamped. The engine is resized synchronously; a locally attached
// process additionally gets a window-size notification. Remote
// sources receive no such notification.
func (c *Console) SetGridSize(cols, rows int) {
	c.size = core.GridSize{Cols: cols, Rows: rows}.Clamp()
	c.adapter.Resize(c.size.Cols, c.size.Rows)
	if c.reader != nil {
		if n, ok := c.reader.Source().(source.WindowNotifier); ok {
			if err := n.NotifyResize(c.size.Cols, c.size.Rows); err != nil {
				c.log.Warn("window size notification failed", "error", err)
			}
		}
	}
	c.dirty = true
}

// GridSize returns the current character grid dimensions.
func (c *Console) GridSize() core.GridSize {
	return c.size
}

// FitWidgetToGrid returns the pixel dimensions the widget needs to
// show the current grid with the surface's character metrics.
func (c *Console) FitWidgetToGrid() (width, height int) {
	m := c.metrics()
	return c.size.Cols * m.CharWidth, c.size.Rows * m.CharHeight
}

// FitGridToWidget derives cols and rows from the surface's current
// pixel dimensions and applies them via SetGridSize.
func (c *Console) FitGridToWidget() {
	if c.surf == nil {
		return
	}
	w, h := c.surf.Size()
	m := c.metrics()
	c.SetGridSize(w/m.CharWidth, h/m.CharHeight)
}

// PixelToCell translates widget pixel coordinates to a cell position.
func (c *Console) PixelToCell(x, y int) core.CellPos {
	m := c.metrics()
	return core.CellPos{Col: x / m.CharWidth, Row: y / m.CharHeight}
}

// CellToPixel returns the top-left pixel of a cell.
func (c *Console) CellToPixel(pos core.CellPos) (x, y int) {
	m := c.metrics()
	return pos.Col * m.CharWidth, pos.Row * m.CharHeight
}

func (c *Console) metrics() surface.Metrics {
	if c.surf == nil {
		return surface.Metrics{CharWidth: 1, CharHeight: 1}
	}
	return c.surf.Metrics()
}

// SetPalette replaces the whole color table.
func (c *Console) SetPalette(p core.Palette) {
	c.palette = p
	c.dirty = true
}

// Palette returns the current color table.
func (c *Console) Palette() core.Palette {
	return c.palette
}

// SetUseBold gates bold rendering globally.
func (c *Console) SetUseBold(on bool) {
	c.opts.UseBold = on
	c.dirty = true
}

// SetCursorStyle changes the cursor shape.
func (c *Console) SetCursorStyle(style CursorStyle) {
	c.opts.CursorStyle = style
	c.dirty = true
}

// SetDrawEmptyCells forces painting of empty, unselected cells.
func (c *Console) SetDrawEmptyCells(on bool) {
	c.opts.DrawEmptyCells = on
	c.dirty = true
}

// SetFocus records input focus. I-beam and underline cursors render
// only while focused; a block cursor renders regardless.
func (c *Console) SetFocus(focused bool) {
	c.focused = focused
	c.dirty = true
}

// Focused reports input focus.
func (c *Console) Focused() bool {
	return c.focused
}

// Dirty reports whether state changed since the last Draw.
func (c *Console) Dirty() bool {
	return c.dirty
}

// OnData registers a callback fired for every chunk fed to the
// console.
func (c *Console) OnData(fn func([]byte)) {
	c.onData = fn
}

// OnDetach registers a callback fired when a reader is detached,
// carrying the reader so the host can dispose of it.
func (c *Console) OnDetach(fn func(*source.Reader)) {
	c.onDetach = fn
}

// DumpScreen returns the full screen content as newline-joined rows.
func (c *Console) DumpScreen() string {
	return c.adapter.Dump()
}

// SelectedText returns the text covered by the current selection
// range, or "" when no range exists.
func (c *Console) SelectedText() string {
	return c.sel.Extract(c.adapter.Dump())
}

// SelectionRange returns the stored selection endpoints, anchor first.
func (c *Console) SelectionRange() (start, end core.CellPos, ok bool) {
	return c.sel.Range()
}
