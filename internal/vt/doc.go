// Package vt defines the boundary to the terminal-state engine (the
// external interpreter that parses escape sequences and maintains the
// character grid) and the adapter that bridges it to the console widget.
//
// The engine is modeled as a single owning resource: the screen state and
// the interpreter bound to it are created and released together, so a
// caller can never observe a half-destroyed pair. Engine-initiated output
// (capability responses and the like) flows through the reply writer the
// engine is constructed with, back to the byte source's write path.
package vt
