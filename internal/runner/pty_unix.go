//go:build !windows

package runner

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// ptyProcess is an interpreter attached to a pseudo terminal so scripts
// that prompt for input behave as they would on the device console.
type ptyProcess struct {
	*os.File
	cmd *exec.Cmd
}

func start(argv []string, cols, rows uint16) (process, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "TERM=dumb")
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, err
	}
	return &ptyProcess{File: ptmx, cmd: cmd}, nil
}

func (p *ptyProcess) Wait() error {
	return p.cmd.Wait()
}

// Kill signals the whole process group; pty.Start makes the child a
// session leader, so its pid is the group id.
func (p *ptyProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL)
}
