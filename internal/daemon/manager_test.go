package daemon

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/expectr"
	"github.com/GriffinCanCode/expectr/internal/metrics"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	base := expectr.Config{Timeout: 5 * time.Second}
	m := NewManager(base, zap.NewNop(), metrics.New(prometheus.NewRegistry()))
	t.Cleanup(m.Shutdown)
	return m
}

func TestManagerLifecycle(t *testing.T) {
	m := newTestManager(t)

	info, err := m.Create("cat", nil, 0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.True(t, info.Active)
	assert.Positive(t, info.Pid)

	got, err := m.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)
	assert.Len(t, m.List(), 1)

	require.NoError(t, m.Send(info.ID, []byte("roundtrip\n")))
	match, err := m.Expect(info.ID, "roundtrip", false, false)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", match.Text)

	require.NoError(t, m.Kill(info.ID))
	_, err = m.Get(info.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, m.List())
}

func TestManagerRequiresCommand(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Create("", nil, 0, 0)
	require.Error(t, err)
}

func TestManagerUnknownSession(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, m.Send("missing", []byte("x")), ErrNotFound)
	require.ErrorIs(t, m.Kill("missing"), ErrNotFound)
}

func TestManagerExpectRegex(t *testing.T) {
	m := newTestManager(t)

	info, err := m.Create("cat", nil, 0, 0)
	require.NoError(t, err)

	require.NoError(t, m.Send(info.ID, []byte("build 123 done\n")))
	match, err := m.Expect(info.ID, `build (\d+)`, true, false)
	require.NoError(t, err)
	require.Len(t, match.Groups, 2)
	assert.Equal(t, "123", match.Groups[1])
}

func TestManagerExpectBadRegex(t *testing.T) {
	m := newTestManager(t)

	info, err := m.Create("cat", nil, 0, 0)
	require.NoError(t, err)

	_, err = m.Expect(info.ID, "(unclosed", true, false)
	require.ErrorIs(t, err, expectr.ErrInvalidPattern)
}

func TestManagerSnapshotAndClear(t *testing.T) {
	m := newTestManager(t)

	info, err := m.Create("cat", nil, 0, 0)
	require.NoError(t, err)

	require.NoError(t, m.Send(info.ID, []byte("payload\n")))
	_, err = m.Expect(info.ID, "payload", false, false)
	require.NoError(t, err)

	require.NoError(t, m.Clear(info.ID))
	active, _, err := m.Snapshot(info.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRemoteTerminalEchoGating(t *testing.T) {
	term := NewRemoteTerminal(24, 80)

	// Detached: output is dropped, not an error.
	n, err := term.Write([]byte("dropped"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	var sink recordingWriter
	require.NoError(t, term.Attach(&sink))
	require.ErrorIs(t, term.Attach(&sink), ErrAttached)

	_, err = term.Write([]byte("streamed"))
	require.NoError(t, err)
	assert.Equal(t, "streamed", sink.String())

	term.Detach()
	_, err = term.Write([]byte("dropped again"))
	require.NoError(t, err)
	assert.Equal(t, "streamed", sink.String())
}

func TestRemoteTerminalInputCarry(t *testing.T) {
	term := NewRemoteTerminal(24, 80)
	term.Push([]byte("abcdef"))

	// A small read leaves the remainder for the next one.
	p := make([]byte, 4)
	n, err := term.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(p[:n]))

	n, err = term.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(p[:n]))
}

func TestRemoteTerminalSize(t *testing.T) {
	term := NewRemoteTerminal(24, 80)
	term.SetSize(50, 132)

	rows, cols, err := term.Size()
	require.NoError(t, err)
	assert.Equal(t, uint16(50), rows)
	assert.Equal(t, uint16(132), cols)
}

type recordingWriter struct {
	data []byte
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *recordingWriter) String() string { return string(w.data) }
