package expectr

import "io"

// StubProcess is a callback-driven Process with no real subprocess behind
// it, used to exercise the engine without spawning anything. Unset
// callbacks fall back to inert defaults: reads return io.EOF, writes are
// accepted and discarded, the process reports alive with pid 1, and
// resizes succeed against a stored 24x80 size.
type StubProcess struct {
	ReadFunc    func(p []byte) (int, error)
	WriteFunc   func(p []byte) (int, error)
	PidFunc     func() int
	AliveFunc   func() bool
	KillFunc    func() error
	WinsizeFunc func() (rows, cols uint16, err error)
	ResizeFunc  func(rows, cols uint16) error
}

func (s *StubProcess) Read(p []byte) (int, error) {
	if s.ReadFunc != nil {
		return s.ReadFunc(p)
	}
	return 0, io.EOF
}

func (s *StubProcess) Write(p []byte) (int, error) {
	if s.WriteFunc != nil {
		return s.WriteFunc(p)
	}
	return len(p), nil
}

func (s *StubProcess) Pid() int {
	if s.PidFunc != nil {
		return s.PidFunc()
	}
	if !s.Alive() {
		return 0
	}
	return 1
}

func (s *StubProcess) Alive() bool {
	if s.AliveFunc != nil {
		return s.AliveFunc()
	}
	return true
}

func (s *StubProcess) Kill() error {
	if s.KillFunc != nil {
		return s.KillFunc()
	}
	return nil
}

func (s *StubProcess) Winsize() (rows, cols uint16, err error) {
	if s.WinsizeFunc != nil {
		return s.WinsizeFunc()
	}
	return DefaultRows, DefaultCols, nil
}

func (s *StubProcess) Resize(rows, cols uint16) error {
	if s.ResizeFunc != nil {
		return s.ResizeFunc(rows, cols)
	}
	return nil
}
