package source

import (
	"io"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Source is a duplex byte-stream endpoint. Sources are externally created
// and destroyed; readers and the console only read and write through them.
type Source interface {
	io.Reader
	io.Writer
}

// WindowNotifier is implemented by sources attached to a local process
// that can be told about grid size changes. Remote sources receive the
// engine resize only; a remote peer cannot learn of size changes through
// this channel.
type WindowNotifier interface {
	NotifyResize(cols, rows int) error
}

// FileSource is a local file descriptor, typically the master side of a
// PTY created by the caller. It notifies the attached foreground process
// of size changes through the descriptor's window-size ioctl.
type FileSource struct {
	f *os.File
}

// NewFileSource wraps an open descriptor. The caller keeps ownership.
func NewFileSource(f *os.File) *FileSource {
	return &FileSource{f: f}
}

func (s *FileSource) Read(p []byte) (int, error) {
	return s.f.Read(p)
}

func (s *FileSource) Write(p []byte) (int, error) {
	return s.f.Write(p)
}

// File returns the underlying descriptor.
func (s *FileSource) File() *os.File {
	return s.f
}

// NotifyResize sets the descriptor's window size. Fails with ENOTTY for
// descriptors that are not terminals.
func (s *FileSource) NotifyResize(cols, rows int) error {
	return unix.IoctlSetWinsize(int(s.f.Fd()), unix.TIOCSWINSZ, &unix.Winsize{
		Col: uint16(cols),
		Row: uint16(rows),
	})
}

// ConnSource is a network connection. Timed-out reads are transient: the
// reader retries them after a short backoff instead of terminating.
type ConnSource struct {
	conn net.Conn
}

// NewConnSource wraps an established connection. The caller keeps
// ownership.
func NewConnSource(conn net.Conn) *ConnSource {
	return &ConnSource{conn: conn}
}

func (s *ConnSource) Read(p []byte) (int, error) {
	return s.conn.Read(p)
}

func (s *ConnSource) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

// Conn returns the underlying connection.
func (s *ConnSource) Conn() net.Conn {
	return s.conn
}
