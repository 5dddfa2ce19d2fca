package expectr

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// procHarness drives a StubProcess over a pipe so tests can feed output
// and observe input without a real subprocess.
type procHarness struct {
	proc *StubProcess
	w    *io.PipeWriter

	alive     atomic.Bool
	killCalls atomic.Int32

	mu      sync.Mutex
	written []byte
	rows    uint16
	cols    uint16
}

func newProcHarness() *procHarness {
	r, w := io.Pipe()
	h := &procHarness{w: w, rows: DefaultRows, cols: DefaultCols}
	h.alive.Store(true)
	h.proc = &StubProcess{
		ReadFunc: r.Read,
		WriteFunc: func(p []byte) (int, error) {
			if !h.alive.Load() {
				return 0, ErrProcessDead
			}
			h.mu.Lock()
			h.written = append(h.written, p...)
			h.mu.Unlock()
			return len(p), nil
		},
		PidFunc: func() int {
			if h.alive.Load() {
				return 4242
			}
			return 0
		},
		AliveFunc: func() bool { return h.alive.Load() },
		KillFunc: func() error {
			h.killCalls.Add(1)
			h.exit()
			return nil
		},
		WinsizeFunc: func() (uint16, uint16, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.rows, h.cols, nil
		},
		ResizeFunc: func(rows, cols uint16) error {
			h.mu.Lock()
			h.rows = rows
			h.cols = cols
			h.mu.Unlock()
			return nil
		},
	}
	return h
}

// feed delivers one chunk of subprocess output to the pump.
func (h *procHarness) feed(s string) {
	h.w.Write([]byte(s))
}

// exit simulates process death: output closes and liveness flips.
func (h *procHarness) exit() {
	if h.alive.CompareAndSwap(true, false) {
		h.w.Close()
	}
}

// sent returns everything written to the process input so far.
func (h *procHarness) sent() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return string(h.written)
}

func (h *procHarness) size() (uint16, uint16) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rows, h.cols
}

// testTerminal is an in-memory Terminal: typed input flows through a pipe
// and echoed output accumulates in a guarded byte slice.
type testTerminal struct {
	in  *io.PipeReader
	inW *io.PipeWriter

	mu   sync.Mutex
	out  []byte
	rows uint16
	cols uint16
}

func newTestTerminal() *testTerminal {
	r, w := io.Pipe()
	return &testTerminal{in: r, inW: w, rows: DefaultRows, cols: DefaultCols}
}

func (t *testTerminal) Read(p []byte) (int, error) {
	return t.in.Read(p)
}

func (t *testTerminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	t.out = append(t.out, p...)
	t.mu.Unlock()
	return len(p), nil
}

func (t *testTerminal) Size() (rows, cols uint16, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows, t.cols, nil
}

func (t *testTerminal) setSize(rows, cols uint16) {
	t.mu.Lock()
	t.rows = rows
	t.cols = cols
	t.mu.Unlock()
}

func (t *testTerminal) output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.out)
}

// typeInput simulates keystrokes on the controlling terminal.
func (t *testTerminal) typeInput(s string) {
	t.inW.Write([]byte(s))
}

// testConfig is the stock configuration for harness-backed sessions: a
// generous wait bound and no echo.
func testConfig(term Terminal) Config {
	return Config{Timeout: 2 * time.Second, Terminal: term}
}
