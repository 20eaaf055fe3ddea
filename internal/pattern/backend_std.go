package pattern

import "regexp"

// stdMatcher wraps the standard library engine. Longest() switches it to
// leftmost-longest matching so its spans agree with the other backends.
type stdMatcher struct {
	re *regexp.Regexp
}

func compileStd(raw, expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &CompileError{Pattern: raw, Pos: errorPos(raw, err), Err: err}
	}
	re.Longest()
	return stdMatcher{re: re}, nil
}

func (m stdMatcher) Find(buf []byte) (int, int, bool) {
	loc := m.re.FindIndex(buf)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

func (m stdMatcher) Matches(buf []byte) bool {
	return m.re.Match(buf)
}
