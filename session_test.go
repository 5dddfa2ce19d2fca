package expectr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKillIsIdempotent(t *testing.T) {
	h := newProcHarness()
	s := New(h.proc, testConfig(newTestTerminal()))

	require.NoError(t, s.Kill())
	assert.Equal(t, 0, s.Pid())

	// Killing again must succeed without complaint.
	require.NoError(t, s.Kill())
	assert.Equal(t, 0, s.Pid())
}

func TestSendAfterKill(t *testing.T) {
	h := newProcHarness()
	s := New(h.proc, testConfig(newTestTerminal()))

	require.NoError(t, s.Kill())
	require.ErrorIs(t, s.Send([]byte("data")), ErrProcessDead)
	require.ErrorIs(t, s.Puts("data"), ErrProcessDead)
}

func TestPutsAppendsNewline(t *testing.T) {
	h := newProcHarness()
	s := New(h.proc, testConfig(newTestTerminal()))
	defer s.Kill()

	require.NoError(t, s.Puts("ls -la"))
	assert.Equal(t, "ls -la\n", h.sent())
}

func TestClearBufferKeepsDiscard(t *testing.T) {
	h := newProcHarness()
	s := New(h.proc, testConfig(newTestTerminal()))
	defer s.Kill()

	h.feed("foo bar baz\n")
	_, err := s.Expect("bar")
	require.NoError(t, err)

	s.ClearBuffer()
	assert.Empty(t, s.Buffer())
	assert.Equal(t, "foo ", string(s.Discard()))
}

func TestZeroConfigGetsDefaults(t *testing.T) {
	h := newProcHarness()
	s := New(h.proc, Config{Terminal: newTestTerminal()})
	defer s.Kill()

	assert.Equal(t, DefaultTimeout, s.Timeout())
	assert.Equal(t, DefaultBufferSize, s.BufferSize())
	assert.False(t, s.Constrain())
	assert.False(t, s.FlushBuffer())
}

func TestDefaultConfigAccessors(t *testing.T) {
	h := newProcHarness()
	cfg := DefaultConfig()
	cfg.Terminal = newTestTerminal()
	s := New(h.proc, cfg)
	defer s.Kill()

	assert.Equal(t, DefaultTimeout, s.Timeout())
	assert.Equal(t, DefaultBufferSize, s.BufferSize())
	assert.False(t, s.Constrain())
	assert.True(t, s.FlushBuffer())
}

func TestOutputEchoedToTerminal(t *testing.T) {
	h := newProcHarness()
	term := newTestTerminal()
	cfg := testConfig(term)
	cfg.FlushBuffer = true
	s := New(h.proc, cfg)
	defer s.Kill()

	h.feed("ping")

	require.Eventually(t, func() bool {
		return term.output() == "ping"
	}, time.Second, 10*time.Millisecond)
}

func TestNoEchoWhenFlushBufferOff(t *testing.T) {
	h := newProcHarness()
	term := newTestTerminal()
	s := New(h.proc, testConfig(term))
	defer s.Kill()

	h.feed("quiet\n")
	_, err := s.Expect("quiet")
	require.NoError(t, err)

	assert.Empty(t, term.output())
}

func TestConstrainCapsActiveBuffer(t *testing.T) {
	h := newProcHarness()
	cfg := testConfig(newTestTerminal())
	cfg.Constrain = true
	cfg.BufferSize = 8
	s := New(h.proc, cfg)
	defer s.Kill()

	h.feed("0123456789abcdef")

	// Only the trailing BufferSize bytes survive.
	require.Eventually(t, func() bool {
		return string(s.Buffer()) == "89abcdef"
	}, time.Second, 10*time.Millisecond)
}

func TestConstrainOffKeepsEverything(t *testing.T) {
	h := newProcHarness()
	cfg := testConfig(newTestTerminal())
	cfg.BufferSize = 8
	s := New(h.proc, cfg)
	defer s.Kill()

	h.feed("0123456789abcdef")

	require.Eventually(t, func() bool {
		return string(s.Buffer()) == "0123456789abcdef"
	}, time.Second, 10*time.Millisecond)
}

func TestWinsizeAndResize(t *testing.T) {
	h := newProcHarness()
	s := New(h.proc, testConfig(newTestTerminal()))
	defer s.Kill()

	require.NoError(t, s.Resize(50, 120))
	rows, cols, err := s.Winsize()
	require.NoError(t, err)
	assert.Equal(t, uint16(50), rows)
	assert.Equal(t, uint16(120), cols)
}

func TestInvalidUTF8Dropped(t *testing.T) {
	h := newProcHarness()
	s := New(h.proc, testConfig(newTestTerminal()))
	defer s.Kill()

	// A lone continuation byte between valid runes disappears.
	h.feed("ok\xffdone\n")
	m, err := s.Expect("okdone")
	require.NoError(t, err)
	assert.Equal(t, "okdone", m.Text)
}
