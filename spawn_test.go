package expectr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnTestConfig() Config {
	cfg := testConfig(newTestTerminal())
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestSpawnRoundTrip(t *testing.T) {
	s, err := Spawn("cat", nil, spawnTestConfig())
	require.NoError(t, err)
	defer s.Kill()

	assert.Positive(t, s.Pid())

	require.NoError(t, s.Puts("hello pty"))
	m, err := s.Expect("hello pty")
	require.NoError(t, err)
	assert.Equal(t, "hello pty", m.Text)
}

func TestSpawnKillReaps(t *testing.T) {
	s, err := Spawn("sleep", []string{"30"}, spawnTestConfig())
	require.NoError(t, err)

	require.NoError(t, s.Kill())
	require.Eventually(t, func() bool { return s.Pid() == 0 },
		2*time.Second, 25*time.Millisecond)

	require.NoError(t, s.Kill())
	require.ErrorIs(t, s.Puts("late"), ErrProcessDead)
}

func TestSpawnExitCutsWaitShort(t *testing.T) {
	s, err := Spawn("true", nil, spawnTestConfig())
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Expect("never-appears")
	require.ErrorIs(t, err, ErrMatchTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestSpawnResize(t *testing.T) {
	s, err := Spawn("cat", nil, spawnTestConfig())
	require.NoError(t, err)
	defer s.Kill()

	require.NoError(t, s.Resize(40, 100))
	rows, cols, err := s.Winsize()
	require.NoError(t, err)
	assert.Equal(t, uint16(40), rows)
	assert.Equal(t, uint16(100), cols)
}

func TestSpawnInitialWinsize(t *testing.T) {
	cfg := spawnTestConfig()
	cfg.Rows = 33
	cfg.Cols = 111
	s, err := Spawn("cat", nil, cfg)
	require.NoError(t, err)
	defer s.Kill()

	rows, cols, err := s.Winsize()
	require.NoError(t, err)
	assert.Equal(t, uint16(33), rows)
	assert.Equal(t, uint16(111), cols)
}

func TestSpawnMissingCommand(t *testing.T) {
	_, err := Spawn("/no/such/binary", nil, spawnTestConfig())
	require.Error(t, err)
}
