package expectr

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// interactPoll is the cadence for terminal-size propagation and process
// liveness checks while interacting.
const interactPoll = 250 * time.Millisecond

// Interact bridges the controlling terminal to the subprocess: every input
// byte read from the terminal is forwarded untransformed, while output
// keeps flowing through the pump so expect waits remain usable during the
// session. Terminal-size changes are propagated to the subprocess PTY once
// per poll cycle.
//
// Interact fails with ErrInteractActive if a session is already active and
// with ErrProcessDead if the process has exited. When blocking is true the
// call returns only after the session goes idle again (Leave, or process
// death).
func (s *Session) Interact(blocking bool) error {
	if !s.proc.Alive() {
		return fmt.Errorf("%w: interact", ErrProcessDead)
	}

	s.interactMu.Lock()
	if s.interacting {
		s.interactMu.Unlock()
		return ErrInteractActive
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	s.interacting = true
	s.interactStop = stop
	s.interactDone = done
	s.interactMu.Unlock()

	go s.forward(stop, done)

	if blocking {
		<-done
	}
	return nil
}

// Leave ends the current interact session and waits for the forwarding
// task to stop. Leaving an idle session is a no-op.
func (s *Session) Leave() error {
	s.interactMu.Lock()
	stop := s.interactStop
	done := s.interactDone
	s.interactStop = nil
	s.interactMu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

// Interacting reports whether an interact session is active.
func (s *Session) Interacting() bool {
	s.interactMu.Lock()
	defer s.interactMu.Unlock()
	return s.interacting
}

// forward is the interact session's dedicated task: it relays terminal
// input to the process and keeps the PTY size in sync until stopped or the
// process dies.
func (s *Session) forward(stop, done chan struct{}) {
	defer func() {
		s.interactMu.Lock()
		s.interacting = false
		s.interactStop = nil
		s.interactMu.Unlock()
		close(done)
	}()

	if raw, ok := s.tty.(RawModer); ok {
		restore, err := raw.Raw()
		if err != nil {
			s.logger.Warn("raw mode unavailable", zap.Error(err))
		} else {
			defer func() {
				if err := restore(); err != nil {
					s.logger.Warn("terminal restore failed", zap.Error(err))
				}
			}()
		}
	}

	s.syncWinsize()

	ticker := time.NewTicker(interactPoll)
	defer ticker.Stop()

	input := s.interactInput()
	for {
		select {
		case <-stop:
			return
		case p, ok := <-input:
			if !ok {
				return
			}
			if _, err := s.proc.Write(p); err != nil {
				s.logger.Warn("input forward failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if !s.proc.Alive() {
				return
			}
			s.syncWinsize()
		}
	}
}

// interactInput lazily starts the single controlling-terminal reader. One
// reader per session keeps repeated interact sessions from competing for
// the same input stream.
func (s *Session) interactInput() <-chan []byte {
	s.inputOnce.Do(func() {
		ch := make(chan []byte, 16)
		s.inputCh = ch
		go func() {
			defer close(ch)
			buf := make([]byte, 1024)
			for {
				n, err := s.tty.Read(buf)
				if n > 0 {
					ch <- append([]byte(nil), buf[:n]...)
				}
				if err != nil {
					return
				}
			}
		}()
	})
	return s.inputCh
}

// syncWinsize propagates the controlling terminal's size to the subprocess
// terminal when they diverge, so the subprocess's own size queries stay
// consistent.
func (s *Session) syncWinsize() {
	rows, cols, err := s.tty.Size()
	if err != nil {
		return
	}
	prows, pcols, err := s.proc.Winsize()
	if err == nil && prows == rows && pcols == cols {
		return
	}
	if err := s.proc.Resize(rows, cols); err != nil {
		s.logger.Warn("winsize propagation failed", zap.Error(err))
	}
}
