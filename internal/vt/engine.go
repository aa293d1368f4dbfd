package vt

// Age is the engine's per-cell dirtiness token. Drawing with age zero
// requests every visible cell unconditionally.
type Age uint32

// Cell describes one visible grid cell as reported by the engine's
// draw pass.
type Cell struct {
	// Runes is the cell's code-point sequence (a grapheme cluster).
	// It is empty for cells the engine has never written.
	Runes []rune

	// Width is the cell's display width in columns.
	Width int

	// Col and Row are the zero-based grid position.
	Col int
	Row int

	// FG and BG are palette indices. A negative value means the cell
	// has no palette index and uses the default color.
	FG int
	BG int

	// Attribute flags.
	Bold      bool
	Underline bool
	Inverse   bool

	// Age is the engine's dirtiness token for this cell.
	Age Age
}

// DrawFunc receives one cell per visible grid position during a draw pass.
type DrawFunc func(cell Cell)

// Engine is the terminal-state engine boundary. Implementations parse the
// byte stream fed to them, maintain the character grid and cursor, and
// report cells on demand. Engines are not safe for concurrent use; all
// calls happen on the UI loop.
type Engine interface {
	// Feed pushes a chunk of the byte stream into the interpreter,
	// mutating the grid and cursor as a side effect. The stream is a
	// plain byte sequence; chunk boundaries carry no meaning.
	Feed(p []byte)

	// Resize sets the grid dimensions. Both values are >= 1.
	Resize(cols, rows int)

	// Cursor returns the current cursor position in cell coordinates.
	Cursor() (x, y int)

	// Draw reports cells whose age exceeds the given token, or every
	// visible cell when age is zero. It returns the age token for the
	// completed pass.
	Draw(fn DrawFunc, age Age) Age

	// Dump returns the full screen content as newline-joined row strings.
	Dump() string

	// Release frees the engine's resources. The engine must not be used
	// afterwards.
	Release()
}
