package expectr

import (
	"fmt"
	"regexp"
	"strings"
)

// compilePattern normalizes an expect pattern. String patterns are escaped
// and matched verbatim — they never behave as regular expressions.
// *regexp.Regexp patterns are used as-is.
func compilePattern(pattern any) (*regexp.Regexp, error) {
	switch p := pattern.(type) {
	case string:
		return regexp.MustCompile(regexp.QuoteMeta(p)), nil
	case *regexp.Regexp:
		return p, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidPattern, pattern)
	}
}

// Procmap is an ordered mapping from patterns to zero-argument handlers,
// dispatched after a single combined wait. Non-regexp keys are normalized
// into escaped literals. When handlers for several patterns could claim the
// same match, the first one registered wins.
type Procmap struct {
	entries   []procmapEntry
	defaultFn func()
	timeoutFn func()
	err       error
}

type procmapEntry struct {
	re *regexp.Regexp
	fn func()
}

// NewProcmap returns an empty pattern map.
func NewProcmap() *Procmap {
	return &Procmap{}
}

// On registers a handler for a pattern (a literal string or a
// *regexp.Regexp). An invalid pattern is remembered and surfaced by
// Session.ExpectProcmap.
func (p *Procmap) On(pattern any, fn func()) *Procmap {
	re, err := compilePattern(pattern)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return p
	}
	p.entries = append(p.entries, procmapEntry{re: re, fn: fn})
	return p
}

// OnDefault registers the handler invoked when no pattern appears before
// the timeout. Its presence makes the underlying wait recoverable.
func (p *Procmap) OnDefault(fn func()) *Procmap {
	p.defaultFn = fn
	return p
}

// OnTimeout registers the fallback handler used on timeout when no default
// handler is set. Its presence makes the underlying wait recoverable.
func (p *Procmap) OnTimeout(fn func()) *Procmap {
	p.timeoutFn = fn
	return p
}

// recoverable reports whether a timed-out wait is handled locally instead
// of propagating.
func (p *Procmap) recoverable() bool {
	return p.defaultFn != nil || p.timeoutFn != nil
}

// combined builds one alternation from every registered pattern. Each
// branch keeps its original grouping so the eventual match can be
// attributed back to its originating key.
func (p *Procmap) combined() *regexp.Regexp {
	parts := make([]string, len(p.entries))
	for i, e := range p.entries {
		parts[i] = "(?:" + e.re.String() + ")"
	}
	return regexp.MustCompile(strings.Join(parts, "|"))
}
