package expectr

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Session drives one subprocess: a background pump fills the shared buffer,
// expect waits search it, and interact mode bridges the controlling
// terminal. A session is safe for concurrent use, with two documented
// limits: at most one expect wait and at most one interact session may be
// active at a time.
type Session struct {
	proc Process

	timeout     time.Duration
	bufferSize  int
	constrain   bool
	flushBuffer bool

	tty    Terminal
	logger *zap.Logger

	buf *buffer

	// Single in-flight expect guard.
	waiting atomic.Bool

	// Interact state machine: idle <-> active.
	interactMu   sync.Mutex
	interacting  bool
	interactStop chan struct{}
	interactDone chan struct{}

	// Lazily-started controlling-terminal reader shared by every
	// interact session on this Session.
	inputOnce sync.Once
	inputCh   chan []byte
}

// New wraps an existing Process in a session and starts its output pump.
// Use this with StubProcess to exercise the engine without a real process.
func New(proc Process, cfg Config) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		proc:        proc,
		timeout:     cfg.Timeout,
		bufferSize:  cfg.BufferSize,
		constrain:   cfg.Constrain,
		flushBuffer: cfg.FlushBuffer,
		tty:         cfg.Terminal,
		logger:      cfg.Logger,
		buf:         newBuffer(cfg.BufferSize, cfg.Constrain),
	}
	go s.pump()
	return s
}

// Spawn starts command with args under a fresh PTY and returns its session.
func Spawn(command string, args []string, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	proc, err := StartProcess(command, args, cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}
	return New(proc, cfg), nil
}

// Adopt attaches to an already-running process through its PTY master.
func Adopt(pid int, ptmx *os.File, cfg Config) (*Session, error) {
	proc, err := AdoptProcess(pid, ptmx)
	if err != nil {
		return nil, err
	}
	return New(proc, cfg), nil
}

// Send writes raw bytes to the subprocess input. It fails with
// ErrProcessDead once the process has exited.
func (s *Session) Send(p []byte) error {
	if !s.proc.Alive() {
		return fmt.Errorf("%w: send", ErrProcessDead)
	}
	if _, err := s.proc.Write(p); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Puts sends str followed by a newline.
func (s *Session) Puts(str string) error {
	return s.Send([]byte(str + "\n"))
}

// Kill terminates the subprocess and reaps it. Idempotent: killing a dead
// process succeeds trivially. After Kill, Pid reports 0 and Send fails.
func (s *Session) Kill() error {
	if err := s.proc.Kill(); err != nil {
		return fmt.Errorf("kill: %w", err)
	}
	// Wake any parked expect so it observes the death promptly.
	s.buf.broadcast()
	return nil
}

// ClearBuffer atomically empties the active buffer without affecting the
// discard view.
func (s *Session) ClearBuffer() {
	s.buf.clear()
}

// Buffer returns a snapshot of unconsumed output.
func (s *Session) Buffer() []byte {
	return s.buf.snapshot()
}

// Discard returns a snapshot of the prefix consumed by the most recent
// successful match.
func (s *Session) Discard() []byte {
	return s.buf.discarded()
}

// Pid reports the subprocess ID, 0 once the process is confirmed dead.
func (s *Session) Pid() int {
	return s.proc.Pid()
}

// Timeout returns the expect wait bound.
func (s *Session) Timeout() time.Duration { return s.timeout }

// BufferSize returns the constrain bound in bytes.
func (s *Session) BufferSize() int { return s.bufferSize }

// Constrain reports whether the active buffer is capped.
func (s *Session) Constrain() bool { return s.constrain }

// FlushBuffer reports whether output is echoed to the controlling terminal.
func (s *Session) FlushBuffer() bool { return s.flushBuffer }

// Winsize reports the subprocess terminal size.
func (s *Session) Winsize() (rows, cols uint16, err error) {
	return s.proc.Winsize()
}

// Resize sets the subprocess terminal size.
func (s *Session) Resize(rows, cols uint16) error {
	return s.proc.Resize(rows, cols)
}
