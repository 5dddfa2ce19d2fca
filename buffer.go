package expectr

import "sync"

// buffer is the shared byte sequence accumulated from subprocess output.
// Two views partition everything produced since the last discard: active
// (unconsumed output available for matching) and discard (the prefix
// consumed by the most recent successful match, retained for inspection).
// All reads and mutations happen under mu; waiters park on cond and are
// woken by every append.
type buffer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	active  []byte
	discard []byte

	max       int
	constrain bool
}

func newBuffer(max int, constrain bool) *buffer {
	b := &buffer{max: max, constrain: constrain}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// append adds output to the tail, applies the constrain cap, and wakes all
// waiters. Only the output pump calls this.
func (b *buffer) append(p []byte) {
	b.mu.Lock()
	b.active = append(b.active, p...)
	if b.constrain && len(b.active) > b.max {
		// Soft cap: keep only the trailing max bytes.
		b.active = append(b.active[:0:0], b.active[len(b.active)-b.max:]...)
	}
	b.mu.Unlock()
	b.cond.Broadcast()
}

// broadcast wakes every parked waiter without touching the contents. Used
// by the watchdog tick and on process death so parked waits re-test.
func (b *buffer) broadcast() {
	b.cond.Broadcast()
}

// snapshot returns a copy of the active view.
func (b *buffer) snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.active...)
}

// discarded returns a copy of the discard view.
func (b *buffer) discarded() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.discard...)
}

// clear atomically empties the active view. The discard view is unaffected.
func (b *buffer) clear() {
	b.mu.Lock()
	b.active = b.active[:0]
	b.mu.Unlock()
}
