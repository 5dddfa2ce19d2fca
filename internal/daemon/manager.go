package daemon

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/expectr"
	"github.com/GriffinCanCode/expectr/internal/metrics"
)

// ErrNotFound reports an unknown session ID.
var ErrNotFound = errors.New("session not found")

// Manager owns the live expect sessions served by expectrd.
type Manager struct {
	base    expectr.Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	sessions sync.Map // map[string]*entry
}

type entry struct {
	sess *expectr.Session
	term *RemoteTerminal

	id        string
	command   string
	args      []string
	startedAt time.Time
}

// Info is the public representation of a session.
type Info struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Args      []string  `json:"args,omitempty"`
	Pid       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	Active    bool      `json:"active"`
}

// NewManager creates a session manager. base supplies the timeout, buffer
// size, and constrain policy for every spawned session.
func NewManager(base expectr.Config, logger *zap.Logger, m *metrics.Metrics) *Manager {
	return &Manager{base: base, logger: logger, metrics: m}
}

// Create spawns command under a fresh PTY and registers its session.
func (m *Manager) Create(command string, args []string, rows, cols uint16) (Info, error) {
	if command == "" {
		return Info{}, fmt.Errorf("command is required")
	}
	if rows == 0 {
		rows = expectr.DefaultRows
	}
	if cols == 0 {
		cols = expectr.DefaultCols
	}

	term := NewRemoteTerminal(rows, cols)
	cfg := m.base
	cfg.Rows = rows
	cfg.Cols = cols
	cfg.Terminal = term
	// Echo feeds the WebSocket stream whenever a client is attached.
	cfg.FlushBuffer = true
	cfg.Logger = m.logger

	sess, err := expectr.Spawn(command, args, cfg)
	if err != nil {
		return Info{}, fmt.Errorf("spawn %s: %w", command, err)
	}

	e := &entry{
		sess:      sess,
		term:      term,
		id:        uuid.NewString(),
		command:   command,
		args:      args,
		startedAt: time.Now(),
	}
	m.sessions.Store(e.id, e)

	m.metrics.SessionsTotal.Inc()
	m.metrics.SessionsActive.Inc()
	m.logger.Info("session created",
		zap.String("id", e.id),
		zap.String("command", command),
		zap.Int("pid", sess.Pid()),
	)
	return e.snapshot(), nil
}

// Get returns info for one session.
func (m *Manager) Get(id string) (Info, error) {
	e, err := m.get(id)
	if err != nil {
		return Info{}, err
	}
	return e.snapshot(), nil
}

// List returns info for all registered sessions.
func (m *Manager) List() []Info {
	var infos []Info
	m.sessions.Range(func(_, value any) bool {
		infos = append(infos, value.(*entry).snapshot())
		return true
	})
	return infos
}

// Send delivers input bytes to a session's subprocess.
func (m *Manager) Send(id string, input []byte) error {
	e, err := m.get(id)
	if err != nil {
		return err
	}
	if err := e.sess.Send(input); err != nil {
		return err
	}
	m.metrics.BytesSent.Add(float64(len(input)))
	return nil
}

// Expect runs one pattern wait against a session. Literal patterns are
// matched verbatim; regex patterns are compiled first. A recoverable wait
// returns (nil, nil) on timeout.
func (m *Manager) Expect(id, pattern string, isRegex, recoverable bool) (*expectr.Match, error) {
	e, err := m.get(id)
	if err != nil {
		return nil, err
	}

	var pat any = pattern
	if isRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", expectr.ErrInvalidPattern, err)
		}
		pat = re
	}

	start := time.Now()
	var match *expectr.Match
	if recoverable {
		match, err = e.sess.TryExpect(pat)
	} else {
		match, err = e.sess.Expect(pat)
	}

	elapsed := time.Since(start)
	switch {
	case errors.Is(err, expectr.ErrMatchTimeout):
		m.metrics.ObserveExpect(metrics.ResultTimeout, elapsed)
	case err != nil:
		m.metrics.ObserveExpect(metrics.ResultError, elapsed)
	case match == nil:
		m.metrics.ObserveExpect(metrics.ResultTimeout, elapsed)
	default:
		m.metrics.ObserveExpect(metrics.ResultMatched, elapsed)
	}
	return match, err
}

// Snapshot returns copies of a session's active and discard buffers.
func (m *Manager) Snapshot(id string) (active, discard []byte, err error) {
	e, err := m.get(id)
	if err != nil {
		return nil, nil, err
	}
	return e.sess.Buffer(), e.sess.Discard(), nil
}

// Clear empties a session's active buffer.
func (m *Manager) Clear(id string) error {
	e, err := m.get(id)
	if err != nil {
		return err
	}
	e.sess.ClearBuffer()
	return nil
}

// Resize sets a session's subprocess terminal size.
func (m *Manager) Resize(id string, rows, cols uint16) error {
	e, err := m.get(id)
	if err != nil {
		return err
	}
	e.term.SetSize(rows, cols)
	return e.sess.Resize(rows, cols)
}

// Kill terminates a session's subprocess and removes the session.
func (m *Manager) Kill(id string) error {
	value, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e := value.(*entry)
	if err := e.sess.Kill(); err != nil {
		return err
	}
	m.metrics.SessionsActive.Dec()
	m.logger.Info("session killed", zap.String("id", id))
	return nil
}

// Session returns the underlying library session, for the interact bridge.
func (m *Manager) Session(id string) (*expectr.Session, error) {
	e, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return e.sess, nil
}

// Terminal returns a session's remote terminal handle.
func (m *Manager) Terminal(id string) (*RemoteTerminal, error) {
	e, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return e.term, nil
}

// Shutdown kills every registered session.
func (m *Manager) Shutdown() {
	m.sessions.Range(func(key, _ any) bool {
		if err := m.Kill(key.(string)); err != nil {
			m.logger.Warn("kill on shutdown failed",
				zap.String("id", key.(string)), zap.Error(err))
		}
		return true
	})
}

func (m *Manager) get(id string) (*entry, error) {
	value, ok := m.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return value.(*entry), nil
}

func (e *entry) snapshot() Info {
	pid := e.sess.Pid()
	return Info{
		ID:        e.id,
		Command:   e.command,
		Args:      e.args,
		Pid:       pid,
		StartedAt: e.startedAt,
		Active:    pid != 0,
	}
}
