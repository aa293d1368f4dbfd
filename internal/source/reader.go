package source

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultChunkSize is the read buffer size per blocking read.
	DefaultChunkSize = 1024

	// handoffCapacity bounds the chunk channel. A sustained overload
	// blocks the read loop on the channel rather than dropping data or
	// growing memory without bound.
	handoffCapacity = 64

	// transientBackoff is the retry delay after a would-block read.
	transientBackoff = 10 * time.Millisecond
)

// Reader pumps bytes from a Source on a dedicated goroutine. Chunks are
// delivered in order over Chunks; the channel closes when the loop
// terminates. Termination, whether end of stream or a hard read error, is
// final for an instance: a reader never restarts.
type Reader struct {
	id        string
	src       Source
	chunkSize int
	chunks    chan []byte

	started atomic.Bool
	running atomic.Bool

	log *slog.Logger
}

// NewReader binds a reader to a source for the reader's lifetime.
func NewReader(src Source, logger *slog.Logger) *Reader {
	return NewReaderSize(src, DefaultChunkSize, logger)
}

// NewReaderSize binds a reader with an explicit per-read buffer size.
func NewReaderSize(src Source, chunkSize int, logger *slog.Logger) *Reader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reader{
		id:        uuid.NewString(),
		src:       src,
		chunkSize: chunkSize,
		chunks:    make(chan []byte, handoffCapacity),
	}
	r.log = logger.With("reader", r.id)
	return r
}

// ID returns the reader's identity, used for log correlation and detach
// events.
func (r *Reader) ID() string {
	return r.id
}

// Source returns the bound source.
func (r *Reader) Source() Source {
	return r.src
}

// Chunks returns the delivery channel. It closes when the read loop
// terminates; the host observes end-of-stream there and disposes of the
// reader.
func (r *Reader) Chunks() <-chan []byte {
	return r.chunks
}

// Running reports whether the read loop is active.
func (r *Reader) Running() bool {
	return r.running.Load()
}

// Start launches the read loop. Starting an already-started reader,
// running or already terminated, is a logged no-op.
func (r *Reader) Start() {
	if !r.started.CompareAndSwap(false, true) {
		r.log.Warn("reader already started")
		return
	}
	r.running.Store(true)
	r.log.Debug("reader starting")
	go r.loop()
}

// Write forwards bytes to the source's write path, best effort. A short
// write is surfaced through the returned count, not retried.
func (r *Reader) Write(p []byte) (int, error) {
	return r.src.Write(p)
}

func (r *Reader) loop() {
	defer func() {
		r.running.Store(false)
		close(r.chunks)
	}()

	buf := make([]byte, r.chunkSize)
	for {
		n, err := r.src.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			r.chunks <- chunk
		}

		switch {
		case err == nil && n == 0:
			// Zero-length read without error is end of stream.
			r.log.Debug("end of stream")
			return
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			r.log.Debug("end of stream")
			return
		case transient(err):
			time.Sleep(transientBackoff)
		default:
			r.log.Warn("read failed", "error", err)
			return
		}
	}
}

// transient reports whether a read error is a would-block condition
// worth retrying rather than a terminal failure.
func transient(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
