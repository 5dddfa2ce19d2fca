package expectr

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// SpawnedProcess is a child process attached to a fresh PTY. A reaper
// goroutine waits for the child so the dead state latches exactly once and
// the PTY closes, unblocking any pending read.
type SpawnedProcess struct {
	cmd  *exec.Cmd
	ptmx *os.File

	mu   sync.RWMutex
	dead bool
	done chan struct{}
}

// StartProcess launches command with args under a new PTY of the given
// size.
func StartProcess(command string, args []string, rows, cols uint16) (*SpawnedProcess, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", command, err)
	}

	p := &SpawnedProcess{cmd: cmd, ptmx: ptmx, done: make(chan struct{})}
	go p.reap()
	return p, nil
}

// reap waits for the child to exit, latches the dead state, and closes the
// PTY so blocked reads return.
func (p *SpawnedProcess) reap() {
	p.cmd.Wait()
	p.mu.Lock()
	p.dead = true
	p.mu.Unlock()
	p.ptmx.Close()
	close(p.done)
}

// Read returns available subprocess output. Once the child has exited, the
// EIO a closed PTY produces is normalized to io.EOF.
func (p *SpawnedProcess) Read(b []byte) (int, error) {
	n, err := p.ptmx.Read(b)
	if err != nil && !p.Alive() {
		err = io.EOF
	}
	return n, err
}

// Write delivers input to the child through the PTY.
func (p *SpawnedProcess) Write(b []byte) (int, error) {
	if !p.Alive() {
		return 0, fmt.Errorf("%w: write", ErrProcessDead)
	}
	return p.ptmx.Write(b)
}

// Pid reports the child PID, 0 once it is confirmed dead.
func (p *SpawnedProcess) Pid() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.dead {
		return 0
	}
	return p.cmd.Process.Pid
}

// Alive reports whether the child is still running.
func (p *SpawnedProcess) Alive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.dead
}

// Kill terminates the child and waits for the reaper. Idempotent.
func (p *SpawnedProcess) Kill() error {
	p.mu.RLock()
	dead := p.dead
	p.mu.RUnlock()
	if dead {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && p.Alive() {
		return fmt.Errorf("kill pid %d: %w", p.cmd.Process.Pid, err)
	}
	<-p.done
	return nil
}

// Winsize reports the child PTY size.
func (p *SpawnedProcess) Winsize() (rows, cols uint16, err error) {
	ws, err := pty.GetsizeFull(p.ptmx)
	if err != nil {
		return 0, 0, fmt.Errorf("winsize: %w", err)
	}
	return ws.Rows, ws.Cols, nil
}

// Resize sets the child PTY size.
func (p *SpawnedProcess) Resize(rows, cols uint16) error {
	if !p.Alive() {
		return fmt.Errorf("%w: resize", ErrProcessDead)
	}
	if err := pty.Setsize(p.ptmx, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}
