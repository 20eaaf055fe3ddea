package pattern

import (
	"regexp"
	"sync"

	"github.com/coregx/coregex/meta"
)

// dfaMatcher pairs the coregex meta engine (lazy DFA with literal
// prefilters) with a leftmost-longest verifier. The coregex engine is
// used as the fast locator only: it decides whether a buffer matches at
// all. Span offsets are always re-derived with the verifier, so this
// backend reports the same leftmost-longest offsets as the others
// regardless of the meta engine's own tie-breaking.
//
// A meta.Engine keeps per-search statistics and is not safe for
// concurrent use, so each worker borrows an engine from a pool; the
// pattern itself was validated once at startup.
type dfaMatcher struct {
	expr   string
	verify *regexp.Regexp
	pool   sync.Pool
}

func compileDFA(raw, expr string) (Matcher, error) {
	// Validate up front so a bad pattern is fatal before any traversal.
	eng, err := meta.Compile(expr)
	if err != nil {
		return nil, &CompileError{Pattern: raw, Pos: errorPos(raw, err), Err: err}
	}
	verify, err := regexp.Compile(expr)
	if err != nil {
		return nil, &CompileError{Pattern: raw, Pos: errorPos(raw, err), Err: err}
	}
	verify.Longest()

	m := &dfaMatcher{expr: expr, verify: verify}
	m.pool.New = func() any {
		e, err := meta.Compile(m.expr)
		if err != nil {
			// Cannot happen: the pattern compiled at startup.
			return nil
		}
		return e
	}
	m.pool.Put(eng)
	return m, nil
}

func (m *dfaMatcher) engine() *meta.Engine {
	e, _ := m.pool.Get().(*meta.Engine)
	return e
}

func (m *dfaMatcher) Find(buf []byte) (int, int, bool) {
	if eng := m.engine(); eng != nil {
		hit := eng.IsMatch(buf)
		m.pool.Put(eng)
		if !hit {
			return 0, 0, false
		}
	}

	loc := m.verify.FindIndex(buf)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

func (m *dfaMatcher) Matches(buf []byte) bool {
	eng := m.engine()
	if eng == nil {
		return m.verify.Match(buf)
	}
	defer m.pool.Put(eng)
	return eng.IsMatch(buf)
}
