package daemon

import (
	"errors"
	"io"
	"sync"
)

// ErrAttached reports a second attach to a remote terminal that already
// has a client.
var ErrAttached = errors.New("terminal already attached")

// RemoteTerminal is the controlling-terminal handle injected into daemon
// sessions. Echoed output streams to the attached writer (the WebSocket
// bridge) and is dropped while no client is attached; interact-mode input
// arrives through Push; the size is whatever the client last reported.
type RemoteTerminal struct {
	mu   sync.Mutex
	out  io.Writer
	rows uint16
	cols uint16

	input chan []byte
	// Unconsumed remainder of the last pushed chunk. Only the single
	// interact reader touches this.
	pendingRead []byte
}

// NewRemoteTerminal creates a detached remote terminal of the given size.
func NewRemoteTerminal(rows, cols uint16) *RemoteTerminal {
	return &RemoteTerminal{rows: rows, cols: cols, input: make(chan []byte, 16)}
}

// Read blocks until a client pushes input.
func (t *RemoteTerminal) Read(p []byte) (int, error) {
	if len(t.pendingRead) == 0 {
		b, ok := <-t.input
		if !ok {
			return 0, io.EOF
		}
		t.pendingRead = b
	}
	n := copy(p, t.pendingRead)
	t.pendingRead = t.pendingRead[n:]
	return n, nil
}

// Write streams echoed output to the attached client, dropping it while
// detached. The session buffer still retains everything for expect waits.
func (t *RemoteTerminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	out := t.out
	t.mu.Unlock()
	if out == nil {
		return len(p), nil
	}
	if _, err := out.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Size reports the client's last reported terminal size.
func (t *RemoteTerminal) Size() (rows, cols uint16, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows, t.cols, nil
}

// SetSize records a client-reported terminal size; the interact poll cycle
// propagates it to the subprocess PTY.
func (t *RemoteTerminal) SetSize(rows, cols uint16) {
	t.mu.Lock()
	t.rows = rows
	t.cols = cols
	t.mu.Unlock()
}

// Attach connects a client writer to the echo stream. One client at a
// time.
func (t *RemoteTerminal) Attach(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.out != nil {
		return ErrAttached
	}
	t.out = w
	return nil
}

// Detach disconnects the current client, if any.
func (t *RemoteTerminal) Detach() {
	t.mu.Lock()
	t.out = nil
	t.mu.Unlock()
}

// Push queues input bytes for the interact reader.
func (t *RemoteTerminal) Push(p []byte) {
	t.input <- append([]byte(nil), p...)
}
