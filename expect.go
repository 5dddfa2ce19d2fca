package expectr

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// pollInterval bounds how long a parked wait can go without re-testing the
// deadline and process liveness when no output arrives.
const pollInterval = 100 * time.Millisecond

// Expect blocks until pattern appears in the active buffer, then atomically
// moves the bytes before the match into the discard view and keeps the
// bytes after it as the new active buffer. The wait is bounded by the
// session timeout; expiry fails with ErrMatchTimeout.
//
// pattern must be a literal string (matched verbatim) or a *regexp.Regexp.
// At most one expect or procmap wait may be in flight per session.
func (s *Session) Expect(pattern any) (*Match, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return s.watchMatch(re)
}

// TryExpect is the recoverable variant of Expect: a timed-out wait returns
// (nil, nil) and leaves the buffer untouched. All other failures propagate
// as in Expect.
func (s *Session) TryExpect(pattern any) (*Match, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	m, err := s.watchMatch(re)
	if errors.Is(err, ErrMatchTimeout) {
		return nil, nil
	}
	return m, err
}

// ExpectProcmap waits once on the combined alternation of pm, then
// dispatches to the first registered handler whose pattern matches the
// matched text. When the wait times out, the default handler runs if
// present, else the timeout handler; with neither, the timeout propagates.
func (s *Session) ExpectProcmap(pm *Procmap) error {
	if pm.err != nil {
		return pm.err
	}
	if len(pm.entries) == 0 {
		return fmt.Errorf("%w: procmap has no patterns", ErrInvalidPattern)
	}

	m, err := s.watchMatch(pm.combined())
	if err != nil {
		if errors.Is(err, ErrMatchTimeout) && pm.recoverable() {
			if pm.defaultFn != nil {
				pm.defaultFn()
			} else {
				pm.timeoutFn()
			}
			return nil
		}
		return err
	}

	// Attribution pass: re-test each key against the matched text in
	// insertion order and dispatch to the first that claims it.
	for _, e := range pm.entries {
		if e.re.MatchString(m.Text) {
			e.fn()
			return nil
		}
	}
	return nil
}

// watchMatch runs the timeout-bound search loop: test the pattern under the
// buffer guard, park until woken by the pump or the watchdog tick, re-test.
// Spurious wakeups are harmless since every wake re-tests.
func (s *Session) watchMatch(re *regexp.Regexp) (*Match, error) {
	if !s.waiting.CompareAndSwap(false, true) {
		return nil, ErrExpectInFlight
	}
	defer s.waiting.Store(false)

	deadline := time.Now().Add(s.timeout)

	// The tick interrupts parked waits so the loop observes deadline
	// expiry and process death even if no further output ever arrives.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		t := time.NewTicker(pollInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.buf.broadcast()
			}
		}
	}()

	b := s.buf
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		if loc := re.FindSubmatchIndex(b.active); loc != nil {
			m := newMatch(b.active, loc)
			// Slice atomically under the guard: a subsequent expect
			// never sees bytes already discarded or matched.
			b.discard = append(b.discard[:0:0], b.active[:loc[0]]...)
			b.active = append(b.active[:0:0], b.active[loc[1]:]...)
			s.logger.Debug("pattern matched",
				zap.String("pattern", re.String()),
				zap.Int("start", m.Start),
				zap.Int("end", m.End),
			)
			return m, nil
		}
		if s.proc.Pid() == 0 {
			return nil, fmt.Errorf("%w: process exited before %s appeared",
				ErrMatchTimeout, re.String())
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s after %s",
				ErrMatchTimeout, re.String(), s.timeout)
		}
		b.cond.Wait()
	}
}

// newMatch builds a Match from FindSubmatchIndex offsets into active.
func newMatch(active []byte, loc []int) *Match {
	groups := make([]string, 0, len(loc)/2)
	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, string(active[loc[i]:loc[i+1]]))
	}
	return &Match{Text: groups[0], Groups: groups, Start: loc[0], End: loc[1]}
}
