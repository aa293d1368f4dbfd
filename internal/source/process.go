package source

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// ProcessSource is a locally spawned process running on a PTY. It is the
// one source kind whose peer learns about grid size changes: NotifyResize
// reaches the process group through the PTY.
type ProcessSource struct {
	cmd  *exec.Cmd
	ptmx *os.File
}

// StartProcess starts cmd with its controlling terminal on a fresh PTY
// sized to the given grid.
func StartProcess(cmd *exec.Cmd, cols, rows int) (*ProcessSource, error) {
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
	if err != nil {
		return nil, err
	}
	return &ProcessSource{cmd: cmd, ptmx: ptmx}, nil
}

func (s *ProcessSource) Read(p []byte) (int, error) {
	return s.ptmx.Read(p)
}

func (s *ProcessSource) Write(p []byte) (int, error) {
	return s.ptmx.Write(p)
}

// NotifyResize pushes the new grid size to the process through the PTY.
func (s *ProcessSource) NotifyResize(cols, rows int) error {
	return pty.Setsize(s.ptmx, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
}

// Close closes the PTY master. The attached reader observes EOF (or EIO)
// on its next read and terminates.
func (s *ProcessSource) Close() error {
	return s.ptmx.Close()
}

// Cmd returns the running command.
func (s *ProcessSource) Cmd() *exec.Cmd {
	return s.cmd
}

// Wait waits for the process to exit.
func (s *ProcessSource) Wait() error {
	return s.cmd.Wait()
}
