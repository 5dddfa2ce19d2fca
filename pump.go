package expectr

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/expectr/internal/sanitize"
)

// pump continuously drains subprocess output into the buffer. It is the
// only writer to the buffer's tail and runs from session construction until
// the process output stream closes or fails.
func (s *Session) pump() {
	chunk := make([]byte, 4096)
	stream := sanitize.NewStream()
	for {
		n, err := s.proc.Read(chunk)
		if n > 0 {
			s.publish(stream.Repair(chunk[:n]))
		}
		if err != nil {
			break
		}
	}
	s.publish(stream.Flush())

	// Waiters re-test liveness on every wake; one final broadcast makes a
	// parked expect observe the exit without waiting for the next tick.
	s.buf.broadcast()
	s.logger.Debug("output pump stopped")
}

// publish echoes a repaired chunk to the controlling terminal and appends
// it under the buffer guard. Echo and append carry the same chunk
// boundaries.
func (s *Session) publish(p []byte) {
	if len(p) == 0 {
		return
	}
	if s.flushBuffer {
		if _, err := s.tty.Write(p); err != nil {
			s.logger.Warn("echo to terminal failed", zap.Error(err))
		}
	}
	s.buf.append(p)
}
