package vt

import "log/slog"

// Adapter bridges the console widget to the terminal-state engine. It owns
// the engine for its lifetime, feeds it the byte stream, and keeps a
// re-synced copy of the cursor position.
//
// An adapter constructed with a nil engine is in the "no engine" state:
// feeds and resizes are silent no-ops, observable via Constructed, and the
// render pass skips cursor and cell drawing.
type Adapter struct {
	engine  Engine
	cursorX int
	cursorY int
	log     *slog.Logger
}

// NewAdapter creates an adapter owning the given engine. A nil engine
// yields a degraded adapter that accepts calls but does nothing.
func NewAdapter(engine Engine, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		logger.Warn("terminal-state engine unavailable, console degraded to no-op")
	}
	return &Adapter{engine: engine, log: logger}
}

// Constructed reports whether the adapter holds a live engine.
func (a *Adapter) Constructed() bool {
	return a.engine != nil
}

// Feed pushes a chunk into the engine and re-reads the cursor position.
// It reports whether the screen state may have changed.
func (a *Adapter) Feed(p []byte) bool {
	if a.engine == nil || len(p) == 0 {
		return false
	}
	a.engine.Feed(p)
	a.SyncCursor()
	return true
}

// SyncCursor re-reads the cursor position from the engine so the
// adapter's copy never drifts from the engine's.
func (a *Adapter) SyncCursor() {
	if a.engine == nil {
		return
	}
	a.cursorX, a.cursorY = a.engine.Cursor()
}

// Cursor returns the last synced cursor position in cell coordinates.
func (a *Adapter) Cursor() (x, y int) {
	return a.cursorX, a.cursorY
}

// Resize pushes new grid dimensions into the engine.
func (a *Adapter) Resize(cols, rows int) {
	if a.engine == nil {
		return
	}
	a.engine.Resize(cols, rows)
	a.SyncCursor()
}

// Draw runs a full unconditional draw pass, trading redraw efficiency for
// correctness: the engine's age tracking is deliberately not used to skip
// cells.
func (a *Adapter) Draw(fn DrawFunc) {
	if a.engine == nil {
		return
	}
	a.engine.Draw(fn, 0)
}

// Dump returns the full screen content as newline-joined row strings,
// or the empty string without an engine.
func (a *Adapter) Dump() string {
	if a.engine == nil {
		return ""
	}
	return a.engine.Dump()
}

// Release frees the engine. The adapter degrades to the no-engine state.
func (a *Adapter) Release() {
	if a.engine == nil {
		return
	}
	a.engine.Release()
	a.engine = nil
}
