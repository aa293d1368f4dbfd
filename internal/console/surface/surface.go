// Package surface provides the pixel-space drawing abstraction the
// console widget paints onto. Drawing is expressed in pixels with text
// positioned by baseline, so a cell-grid implementation (tcell) and a
// raster implementation can sit behind the same interface.
package surface

import "github.com/dhowlett/conview/internal/console/core"

// Metrics describes the fixed character cell of a surface's font.
type Metrics struct {
	CharWidth  int
	CharHeight int
}

// Surface is a drawing target. Implementations handle actual output to
// the terminal or other display surfaces.
type Surface interface {
	// Metrics returns the character cell dimensions in pixels.
	Metrics() Metrics

	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// FillRect fills a rectangle with a color. A translucent color is
	// composited over what is already there.
	FillRect(x, y, width, height int, c core.Color)

	// DrawText draws text with its baseline at y, left edge at x.
	DrawText(x, y int, text string, style core.Style)

	// Flush makes all drawing since the last flush visible.
	Flush()
}

// FillOp records a single FillRect call on a Memory surface.
type FillOp struct {
	X, Y, Width, Height int
	Color               core.Color
}

// TextOp records a single DrawText call on a Memory surface.
type TextOp struct {
	X, Y  int
	Text  string
	Style core.Style
}

// Memory is an in-memory surface for testing. It records every drawing
// call in order.
type Memory struct {
	metrics Metrics
	width   int
	height  int

	Fills   []FillOp
	Texts   []TextOp
	Flushes int
}

// NewMemory creates a memory surface with the given pixel dimensions
// and character metrics.
func NewMemory(width, height int, metrics Metrics) *Memory {
	return &Memory{metrics: metrics, width: width, height: height}
}

func (m *Memory) Metrics() Metrics {
	return m.metrics
}

func (m *Memory) Size() (int, int) {
	return m.width, m.height
}

func (m *Memory) FillRect(x, y, width, height int, c core.Color) {
	m.Fills = append(m.Fills, FillOp{X: x, Y: y, Width: width, Height: height, Color: c})
}

func (m *Memory) DrawText(x, y int, text string, style core.Style) {
	m.Texts = append(m.Texts, TextOp{X: x, Y: y, Text: text, Style: style})
}

func (m *Memory) Flush() {
	m.Flushes++
}

// Reset discards all recorded operations.
func (m *Memory) Reset() {
	m.Fills = nil
	m.Texts = nil
	m.Flushes = 0
}

// TextAt returns the recorded text op whose left edge is at (x, y),
// or nil if none was drawn there.
func (m *Memory) TextAt(x, y int) *TextOp {
	for i := range m.Texts {
		if m.Texts[i].X == x && m.Texts[i].Y == y {
			return &m.Texts[i]
		}
	}
	return nil
}
