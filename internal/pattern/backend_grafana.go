package pattern

import "github.com/grafana/regexp"

// grafanaMatcher binds the grafana/regexp fork. The API is identical to
// the standard library; the implementation trades compilation time for
// faster repeated execution, which suits scanning many files with one
// pattern.
type grafanaMatcher struct {
	re *regexp.Regexp
}

func compileGrafana(raw, expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &CompileError{Pattern: raw, Pos: errorPos(raw, err), Err: err}
	}
	re.Longest()
	return grafanaMatcher{re: re}, nil
}

func (m grafanaMatcher) Find(buf []byte) (int, int, bool) {
	loc := m.re.FindIndex(buf)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

func (m grafanaMatcher) Matches(buf []byte) bool {
	return m.re.Match(buf)
}
