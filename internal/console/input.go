package console

// Key represents a keyboard key.
type Key int

// Key constants for special keys.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use the rune argument)
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeyHome
	KeyEnd
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Mod represents modifier key state.
type Mod int

const (
	ModNone Mod = 0
	ModCtrl Mod = 1 << iota
	ModAlt
	ModShift
)

// Has returns true if the mask contains the given modifier.
func (m Mod) Has(mod Mod) bool {
	return m&mod != 0
}

// specialKeys maps keys with fixed encodings to the byte sequence a
// terminal sends for them. Function keys use the xterm numbering,
// which skips 16 and 22.
var specialKeys = map[Key]string{
	KeyEnter:     "\n",
	KeyTab:       "\t",
	KeyBackspace: "\x08",
	KeyEscape:    "\x1b",
	KeyHome:      "\x1b[H",
	KeyEnd:       "\x1b[F",
	KeyUp:        "\x1b[A",
	KeyDown:      "\x1b[B",
	KeyRight:     "\x1b[C",
	KeyLeft:      "\x1b[D",
	KeyPageUp:    "\x1b[5~",
	KeyPageDown:  "\x1b[6~",
	KeyF1:        "\x1b[11~",
	KeyF2:        "\x1b[12~",
	KeyF3:        "\x1b[13~",
	KeyF4:        "\x1b[14~",
	KeyF5:        "\x1b[15~",
	KeyF6:        "\x1b[17~",
	KeyF7:        "\x1b[18~",
	KeyF8:        "\x1b[19~",
	KeyF9:        "\x1b[20~",
	KeyF10:       "\x1b[21~",
	KeyF11:       "\x1b[23~",
	KeyF12:       "\x1b[24~",
}

// Encode translates a key event to the byte sequence the attached
// process expects. Unknown keys encode to nil.
func Encode(key Key, mod Mod, r rune) []byte {
	if s, ok := specialKeys[key]; ok {
		return []byte(s)
	}
	if key != KeyRune {
		return nil
	}
	if mod.Has(ModCtrl) && r >= 'a' && r <= 'z' {
		return []byte{byte(r - 'a' + 1)}
	}
	if mod.Has(ModCtrl) && r >= 'A' && r <= 'Z' {
		return []byte{byte(r - 'A' + 1)}
	}
	return []byte(string(r))
}

// HandleKey encodes a key event, sends it to the source, and re-syncs
// the cursor. Any selection is discarded; typing ends a selection.
func (c *Console) HandleKey(key Key, mod Mod, r rune) {
	c.sel.Clear()

	seq := Encode(key, mod, r)
	if len(seq) == 0 {
		return
	}
	c.WriteToSource(seq)
	c.adapter.SyncCursor()
	c.dirty = true
}

// MouseDown begins a selection at the pressed pixel position. Any
// prior range is discarded.
func (c *Console) MouseDown(x, y int) {
	c.sel.Begin(c.PixelToCell(x, y))
	c.dragging = true
	c.dirty = true
}

// MouseMove extends the selection while a drag is in progress.
func (c *Console) MouseMove(x, y int) {
	if !c.dragging {
		return
	}
	c.sel.Extend(c.PixelToCell(x, y))
	c.dirty = true
}

// MouseUp completes the drag. The highlight goes away but the range
// stays addressable for extraction until the next MouseDown.
func (c *Console) MouseUp(x, y int) {
	if !c.dragging {
		return
	}
	c.sel.Extend(c.PixelToCell(x, y))
	c.sel.End()
	c.dragging = false
	c.dirty = true
}
