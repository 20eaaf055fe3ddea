package walker

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreFiles are the per-directory ignore files read during traversal,
// in load order.
var ignoreFiles = []string{".gitignore", ".ignore"}

// RuleSet holds the exclusion rules sourced from one directory's ignore
// files. Literal filenames and bare extensions get set lookups; anything
// with glob syntax goes through doublestar. A RuleSet is immutable after
// load and shared read-only.
type RuleSet struct {
	dir        string
	filenames  map[string]struct{}
	extensions map[string]struct{}
	patterns   []rule
	negated    []rule
}

type rule struct {
	glob    string
	dirOnly bool
}

// LoadRuleSet reads the ignore files present in dir. Missing files are
// fine; an empty RuleSet never has an opinion.
func LoadRuleSet(dir string, extraFiles ...string) *RuleSet {
	rs := &RuleSet{
		dir:        dir,
		filenames:  make(map[string]struct{}),
		extensions: make(map[string]struct{}),
	}
	for _, name := range ignoreFiles {
		rs.loadFile(filepath.Join(dir, name))
	}
	for _, path := range extraFiles {
		rs.loadFile(path)
	}
	return rs
}

func (rs *RuleSet) loadFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rs.addPattern(line)
	}
}

// addPattern classifies one ignore line. The fast-path sets cover the
// two overwhelmingly common shapes, literal names ("node_modules") and
// extension globs ("*.log"); everything else compiles to a glob.
func (rs *RuleSet) addPattern(line string) {
	if strings.HasPrefix(line, "!") {
		rs.negated = append(rs.negated, makeRule(line[1:]))
		return
	}
	if isLiteralName(line) {
		rs.filenames[strings.TrimSuffix(line, "/")] = struct{}{}
		return
	}
	if ext, ok := extensionPattern(line); ok {
		rs.extensions[ext] = struct{}{}
		return
	}
	rs.patterns = append(rs.patterns, makeRule(line))
}

func makeRule(line string) rule {
	r := rule{}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		// Anchored to the rule set's directory.
		r.glob = strings.TrimPrefix(line, "/")
	} else {
		// Unanchored: match at any depth below the directory.
		r.glob = "**/" + line
	}
	return r
}

// isLiteralName reports whether the pattern is a plain file or directory
// name with no glob syntax and no path separator.
func isLiteralName(s string) bool {
	trimmed := strings.TrimSuffix(s, "/")
	return trimmed != "" && !strings.ContainsAny(trimmed, "*?[]/!")
}

// extensionPattern recognizes "*.ext" with a literal extension.
func extensionPattern(s string) (string, bool) {
	if !strings.HasPrefix(s, "*.") {
		return "", false
	}
	ext := s[2:]
	if ext == "" || strings.ContainsAny(ext, "*?[]/.") {
		return "", false
	}
	return ext, true
}

// Decision is a RuleSet's verdict for one path.
type Decision int

const (
	// NoOpinion means no rule in the set applies.
	NoOpinion Decision = iota
	// Ignore means a rule excludes the path.
	Ignore
	// Include means a negated rule explicitly re-includes the path.
	Include
)

// Decide checks path (absolute or relative to the walk root) against the
// set. Negated rules are consulted first so "!" always wins within one
// ignore file.
func (rs *RuleSet) Decide(path string, isDir bool) Decision {
	rel, err := filepath.Rel(rs.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return NoOpinion
	}
	rel = filepath.ToSlash(rel)
	name := filepath.Base(path)

	if rs.matchRules(rs.negated, rel, isDir) {
		return Include
	}
	if _, ok := rs.filenames[name]; ok {
		return Ignore
	}
	if !isDir {
		if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != "" {
			if _, ok := rs.extensions[ext]; ok {
				return Ignore
			}
		}
	}
	if rs.matchRules(rs.patterns, rel, isDir) {
		return Ignore
	}
	return NoOpinion
}

func (rs *RuleSet) matchRules(rules []rule, rel string, isDir bool) bool {
	for _, r := range rules {
		if r.dirOnly && !isDir {
			// A directory-only pattern still excludes files beneath a
			// matching directory; check every ancestor component.
			if matchesAncestor(r.glob, rel) {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(r.glob, rel); ok {
			return true
		}
	}
	return false
}

// matchesAncestor reports whether any ancestor directory of rel matches
// the glob.
func matchesAncestor(glob, rel string) bool {
	for i := strings.IndexByte(rel, '/'); i > 0; {
		if ok, _ := doublestar.Match(glob, rel[:i]); ok {
			return true
		}
		next := strings.IndexByte(rel[i+1:], '/')
		if next < 0 {
			break
		}
		i = i + 1 + next
	}
	return false
}

// Stack is the ignore context accumulated along the current descent,
// root first. Immutable rule sets are appended as the walker enters a
// directory and dropped when it leaves.
type Stack []*RuleSet

// Ignored applies nearest-wins precedence: the deepest rule set with an
// opinion decides, matching how layered ignore files behave in practice.
func (s Stack) Ignored(path string, isDir bool) bool {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i].Decide(path, isDir) {
		case Ignore:
			return true
		case Include:
			return false
		}
	}
	return false
}
