package core

// PaletteSize is the number of fixed color slots (standard 8 + bright 8).
const PaletteSize = 16

// Palette holds the 16 fixed terminal colors plus the default foreground,
// default background, and the selection overlay background. It is a plain
// value passed at construction; there is no process-wide default table.
type Palette struct {
	// Colors are the 16 slots indexed by standard ANSI color number:
	// 0-7 standard, 8-15 bright.
	Colors [PaletteSize]Color

	// DefaultFG is used for cells without a palette index and as the
	// fallback for out-of-range foreground indices.
	DefaultFG Color

	// DefaultBG is used for the full-background fill and as the fallback
	// for out-of-range background indices.
	DefaultBG Color

	// SelectionBG overrides a cell's background while it is selected.
	SelectionBG Color
}

// Lookup resolves a palette index to a color. Indices outside 0-15
// resolve to the given fallback, never to an out-of-bounds access.
func (p Palette) Lookup(index int, fallback Color) Color {
	if index < 0 || index >= PaletteSize {
		return fallback
	}
	return p.Colors[index]
}

// DefaultPalette returns the built-in color scheme.
// Colors from the Dracula theme <https://draculatheme.com/>.
func DefaultPalette() Palette {
	p := Palette{
		Colors: [PaletteSize]Color{
			{R: 0x21, G: 0x22, B: 0x2C, A: 255}, // black
			{R: 0xFF, G: 0x55, B: 0x55, A: 255}, // red
			{R: 0x50, G: 0xFA, B: 0x7B, A: 255}, // green
			{R: 0xF1, G: 0xFA, B: 0x8C, A: 255}, // yellow
			{R: 0xBD, G: 0x93, B: 0xF9, A: 255}, // blue
			{R: 0xFF, G: 0x79, B: 0xC6, A: 255}, // magenta
			{R: 0x8B, G: 0xE9, B: 0xFD, A: 255}, // cyan
			{R: 0xF8, G: 0xF8, B: 0xF2, A: 255}, // white
			{R: 0x62, G: 0x72, B: 0xA4, A: 255}, // bright black
			{R: 0xFF, G: 0x6E, B: 0x6E, A: 255}, // bright red
			{R: 0x69, G: 0xFF, B: 0x94, A: 255}, // bright green
			{R: 0xFF, G: 0xFF, B: 0xA5, A: 255}, // bright yellow
			{R: 0xD6, G: 0xAC, B: 0xFF, A: 255}, // bright blue
			{R: 0xFF, G: 0x92, B: 0xDF, A: 255}, // bright magenta
			{R: 0xA4, G: 0xFF, B: 0xFF, A: 255}, // bright cyan
			{R: 0xFF, G: 0xFF, B: 0xFF, A: 255}, // bright white
		},
		SelectionBG: Color{R: 255, G: 255, B: 255, A: 40},
	}
	p.DefaultFG = p.Colors[7]
	p.DefaultBG = p.Colors[0]
	return p
}
