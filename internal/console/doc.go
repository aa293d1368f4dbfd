// Package console implements the terminal display widget. A Console
// owns the character grid, palette, cursor, and selection state, feeds
// bytes from an attached source into a terminal-state engine, and
// paints the result onto a drawing surface.
//
// Threading: the console is UI-thread affine. Attached readers pump
// bytes on their own goroutines and deliver chunks over a channel; the
// host's event loop forwards each chunk to Feed. No console method is
// safe to call from a reader goroutine.
package console
