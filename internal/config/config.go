package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dhowlett/conview/internal/console"
	"github.com/dhowlett/conview/internal/console/core"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidColor indicates a palette entry is not a valid hex color.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidGrid indicates a grid dimension below 1.
	ErrInvalidGrid = errors.New("invalid grid size")
)

// Config is the top-level configuration file structure.
type Config struct {
	Terminal TerminalConfig `toml:"terminal"`
	Palette  PaletteConfig  `toml:"palette"`
}

// TerminalConfig holds widget behavior settings.
type TerminalConfig struct {
	// Cols and Rows set the initial grid.
	Cols int `toml:"cols"`
	Rows int `toml:"rows"`

	// CursorStyle is one of "block", "underline", "ibeam", "hidden".
	CursorStyle string `toml:"cursor_style"`

	// UseBold gates bold rendering globally.
	UseBold bool `toml:"use_bold"`

	// DrawEmptyCells forces painting of empty, unselected cells.
	DrawEmptyCells bool `toml:"draw_empty_cells"`

	// ChunkSize is the reader's per-read buffer size in bytes.
	ChunkSize int `toml:"chunk_size"`
}

// PaletteConfig holds the 16 fixed color slots plus defaults, all as
// "#RRGGBB" hex strings.
type PaletteConfig struct {
	Black         string `toml:"black"`
	Red           string `toml:"red"`
	Green         string `toml:"green"`
	Yellow        string `toml:"yellow"`
	Blue          string `toml:"blue"`
	Magenta       string `toml:"magenta"`
	Cyan          string `toml:"cyan"`
	White         string `toml:"white"`
	BrightBlack   string `toml:"bright_black"`
	BrightRed     string `toml:"bright_red"`
	BrightGreen   string `toml:"bright_green"`
	BrightYellow  string `toml:"bright_yellow"`
	BrightBlue    string `toml:"bright_blue"`
	BrightMagenta string `toml:"bright_magenta"`
	BrightCyan    string `toml:"bright_cyan"`
	BrightWhite   string `toml:"bright_white"`

	// Foreground and Background override the defaults, which are
	// otherwise the white and black slots.
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`

	// Selection is the selection-overlay color; SelectionAlpha is its
	// opacity, 0-255.
	Selection      string `toml:"selection"`
	SelectionAlpha int    `toml:"selection_alpha"`
}

// Default returns the built-in configuration: an 80x24 grid, a block
// cursor, bold enabled, and the default palette.
func Default() Config {
	p := core.DefaultPalette()
	pc := PaletteConfig{
		Selection:      p.SelectionBG.String(),
		SelectionAlpha: int(p.SelectionBG.A),
		Foreground:     p.DefaultFG.String(),
		Background:     p.DefaultBG.String(),
	}
	for i, slot := range paletteSlots(&pc) {
		*slot = p.Colors[i].String()
	}
	return Config{
		Terminal: TerminalConfig{
			Cols:        80,
			Rows:        24,
			CursorStyle: "block",
			UseBold:     true,
			ChunkSize:   1024,
		},
		Palette: pc,
	}
}

// Load reads the configuration file at path. A missing file is not an
// error; the defaults are returned. Present values override defaults
// field by field.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ConsoleOptions converts the configuration to widget options. Every
// malformed value is reported with the offending key.
func (c Config) ConsoleOptions() (console.Options, error) {
	opts := console.DefaultOptions()

	if c.Terminal.Cols < 1 || c.Terminal.Rows < 1 {
		return opts, fmt.Errorf("terminal.cols/rows: %w: %dx%d", ErrInvalidGrid, c.Terminal.Cols, c.Terminal.Rows)
	}
	opts.Size = core.GridSize{Cols: c.Terminal.Cols, Rows: c.Terminal.Rows}
	opts.CursorStyle = ParseCursorStyle(c.Terminal.CursorStyle)
	opts.UseBold = c.Terminal.UseBold
	opts.DrawEmptyCells = c.Terminal.DrawEmptyCells
	if c.Terminal.ChunkSize > 0 {
		opts.ChunkSize = c.Terminal.ChunkSize
	}

	palette, err := c.Palette.Build()
	if err != nil {
		return opts, err
	}
	opts.Palette = palette
	return opts, nil
}

// ParseCursorStyle maps a style name to a cursor style. Unknown names
// fall back to the block cursor.
func ParseCursorStyle(name string) console.CursorStyle {
	switch name {
	case "underline":
		return console.CursorUnderline
	case "ibeam":
		return console.CursorIBeam
	case "hidden":
		return console.CursorHidden
	default:
		return console.CursorBlock
	}
}

// Build converts the hex color table to a palette. Errors name the
// offending key.
func (pc PaletteConfig) Build() (core.Palette, error) {
	var p core.Palette

	names := paletteNames()
	for i, slot := range paletteSlots(&pc) {
		c, err := parseColor(names[i], *slot)
		if err != nil {
			return p, err
		}
		p.Colors[i] = c
	}

	var err error
	if p.DefaultFG, err = parseColor("palette.foreground", pc.Foreground); err != nil {
		return p, err
	}
	if p.DefaultBG, err = parseColor("palette.background", pc.Background); err != nil {
		return p, err
	}
	sel, err := parseColor("palette.selection", pc.Selection)
	if err != nil {
		return p, err
	}
	sel.A = uint8(pc.SelectionAlpha)
	p.SelectionBG = sel
	return p, nil
}

func parseColor(key, hex string) (core.Color, error) {
	c, err := core.ColorFromHex(hex)
	if err != nil {
		return core.Color{}, fmt.Errorf("%s: %w: %q", key, ErrInvalidColor, hex)
	}
	return c, nil
}

// paletteSlots returns the 16 color fields in palette index order.
func paletteSlots(pc *PaletteConfig) [16]*string {
	return [16]*string{
		&pc.Black, &pc.Red, &pc.Green, &pc.Yellow,
		&pc.Blue, &pc.Magenta, &pc.Cyan, &pc.White,
		&pc.BrightBlack, &pc.BrightRed, &pc.BrightGreen, &pc.BrightYellow,
		&pc.BrightBlue, &pc.BrightMagenta, &pc.BrightCyan, &pc.BrightWhite,
	}
}

func paletteNames() [16]string {
	return [16]string{
		"palette.black", "palette.red", "palette.green", "palette.yellow",
		"palette.blue", "palette.magenta", "palette.cyan", "palette.white",
		"palette.bright_black", "palette.bright_red", "palette.bright_green", "palette.bright_yellow",
		"palette.bright_blue", "palette.bright_magenta", "palette.bright_cyan", "palette.bright_white",
	}
}
