package expectr

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// AdoptedProcess attaches to an already-running process through its PTY
// master. The caller owns process creation; liveness is probed with signal
// 0 and the exit status is never reaped here (the real parent does that).
type AdoptedProcess struct {
	ptmx *os.File

	mu   sync.Mutex
	pid  int
	dead bool
}

// AdoptProcess wraps pid and its PTY master file. It fails if the process
// does not exist or cannot be signaled.
func AdoptProcess(pid int, ptmx *os.File) (*AdoptedProcess, error) {
	if err := unix.Kill(pid, 0); err != nil {
		return nil, fmt.Errorf("adopt pid %d: %w", pid, err)
	}
	return &AdoptedProcess{pid: pid, ptmx: ptmx}, nil
}

// Read returns available process output, reporting io.EOF once the process
// is gone and the PTY closed.
func (p *AdoptedProcess) Read(b []byte) (int, error) {
	n, err := p.ptmx.Read(b)
	if err != nil && !p.Alive() {
		err = io.EOF
	}
	return n, err
}

// Write delivers input through the PTY master.
func (p *AdoptedProcess) Write(b []byte) (int, error) {
	if !p.Alive() {
		return 0, fmt.Errorf("%w: write", ErrProcessDead)
	}
	return p.ptmx.Write(b)
}

// Pid reports the adopted PID, 0 once the process is confirmed dead.
func (p *AdoptedProcess) Pid() int {
	if !p.Alive() {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// Alive probes the process with signal 0. Death latches permanently and
// closes the PTY master so the pump unblocks.
func (p *AdoptedProcess) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return false
	}
	if err := unix.Kill(p.pid, 0); err != nil {
		p.dead = true
		p.pid = 0
		p.ptmx.Close()
		return false
	}
	return true
}

// Kill sends SIGTERM, escalating to SIGKILL if the process lingers.
// Idempotent: killing a dead process succeeds trivially.
func (p *AdoptedProcess) Kill() error {
	if !p.Alive() {
		return nil
	}
	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	unix.Kill(pid, unix.SIGTERM)
	if p.waitGone() {
		return nil
	}
	unix.Kill(pid, unix.SIGKILL)
	if p.waitGone() {
		return nil
	}
	return fmt.Errorf("kill pid %d: process did not exit", pid)
}

// waitGone polls liveness for up to one second.
func (p *AdoptedProcess) waitGone() bool {
	for i := 0; i < 20; i++ {
		if !p.Alive() {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

// Winsize reports the PTY size.
func (p *AdoptedProcess) Winsize() (rows, cols uint16, err error) {
	ws, err := pty.GetsizeFull(p.ptmx)
	if err != nil {
		return 0, 0, fmt.Errorf("winsize: %w", err)
	}
	return ws.Rows, ws.Cols, nil
}

// Resize sets the PTY size.
func (p *AdoptedProcess) Resize(rows, cols uint16) error {
	if !p.Alive() {
		return fmt.Errorf("%w: resize", ErrProcessDead)
	}
	if err := pty.Setsize(p.ptmx, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}
