// Package core provides shared types for the console widget.
// This package breaks import cycles between the widget facade,
// the drawing surface, and the selection model.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Attr represents per-cell display attributes.
type Attr uint8

// Attribute flags reported by the terminal-state engine.
const (
	AttrNone      Attr = 0
	AttrBold      Attr = 1 << iota
	AttrUnderline      // Underlined text
	AttrInverse        // Inverse video (swap fg/bg)
)

// Has returns true if the attribute set contains the given attribute.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// With returns a new attribute set with the given attribute added.
func (a Attr) With(attr Attr) Attr {
	return a | attr
}

// Color is an RGBA color value.
type Color struct {
	R, G, B uint8
	// A is the alpha channel; 255 is fully opaque.
	A uint8
}

// ColorFromRGB creates an opaque color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// ColorFromHex creates a color from a "#RRGGBB" or "RRGGBB" hex string.
func ColorFromHex(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color length: %s", hex)
	}

	r, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %s", hex)
	}
	g, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %s", hex)
	}
	b, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %s", hex)
	}

	return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, nil
}

// String returns the hex representation of the color.
func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Blend blends two colors together.
// Amount 0.0 = c, 1.0 = other. The result is opaque.
func (c Color) Blend(other Color, amount float64) Color {
	return Color{
		R: uint8(float64(c.R)*(1-amount) + float64(other.R)*amount),
		G: uint8(float64(c.G)*(1-amount) + float64(other.G)*amount),
		B: uint8(float64(c.B)*(1-amount) + float64(other.B)*amount),
		A: 255,
	}
}

// Composite lays other over c using other's alpha channel.
func (c Color) Composite(other Color) Color {
	return c.Blend(other, float64(other.A)/255)
}

// Style is the resolved visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attr       Attr
}

// Invert returns a style with foreground and background swapped.
func (s Style) Invert() Style {
	return Style{
		Foreground: s.Background,
		Background: s.Foreground,
		Attr:       s.Attr,
	}
}

// CellPos is a zero-based position in the character grid.
type CellPos struct {
	Col int
	Row int
}

// Before returns true if p comes before other in row-major order.
func (p CellPos) Before(other CellPos) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Col < other.Col
}

// GridSize is the character-grid dimensions of the widget.
type GridSize struct {
	Cols int
	Rows int
}

// Clamp returns a size with both dimensions forced to at least 1.
// The grid is never empty; requests for zero or negative sizes are
// clamped rather than rejected.
func (g GridSize) Clamp() GridSize {
	if g.Cols < 1 {
		g.Cols = 1
	}
	if g.Rows < 1 {
		g.Rows = 1
	}
	return g
}

// Equals returns true if two sizes are identical.
func (g GridSize) Equals(other GridSize) bool {
	return g.Cols == other.Cols && g.Rows == other.Rows
}
