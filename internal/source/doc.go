// Package source provides the console's byte-stream endpoints and the
// background reader that pumps them.
//
// A Source is a duplex byte stream owned by the caller: the reader never
// opens or closes one, only reads and writes through it. The union handle
// of classic implementations (one slot holding either a descriptor or a
// socket, disambiguated by a flag) is replaced by distinct source types
// carrying their own read, write and resize-notification behavior, so
// invalid combinations cannot be represented.
//
// A Reader runs one goroutine doing blocking reads and delivers chunks in
// order over a bounded channel. The consumer marshals chunks onto the UI
// loop; the reader itself never touches widget state.
package source
