// Package pattern turns a user search pattern plus flags into a compiled
// matcher. Compilation happens exactly once per run; the resulting Matcher
// is shared read-only across all scan workers.
//
// Three interchangeable backends satisfy the same Matcher contract:
// the standard library engine (default), the grafana drop-in engine, and
// the coregex lazy-DFA engine. All are held to leftmost-longest semantics
// so observable spans are identical regardless of backend.
package pattern

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"strings"
	"unicode"
)

// BackendKind selects which regex engine compiles and executes the pattern.
type BackendKind string

const (
	// BackendStd is the standard library regexp engine, switched to
	// leftmost-longest matching. This is the default.
	BackendStd BackendKind = "std"

	// BackendGrafana is github.com/grafana/regexp, an API-compatible
	// drop-in with a faster onepass/lazy implementation.
	BackendGrafana BackendKind = "grafana"

	// BackendDFA is the coregex meta engine (lazy DFA with literal
	// prefilters).
	BackendDFA BackendKind = "dfa"
)

// Backends lists every selectable backend, in documentation order.
func Backends() []BackendKind {
	return []BackendKind{BackendStd, BackendGrafana, BackendDFA}
}

// ParseBackend validates a user-supplied backend name.
func ParseBackend(name string) (BackendKind, error) {
	switch BackendKind(name) {
	case BackendStd, BackendGrafana, BackendDFA:
		return BackendKind(name), nil
	case "":
		return BackendStd, nil
	}
	return "", fmt.Errorf("unknown regex backend %q (have: std, grafana, dfa)", name)
}

// Flags modify how the raw pattern is interpreted. A Flags value is part
// of the immutable Pattern and never changes after compilation.
type Flags struct {
	IgnoreCase bool // match case-insensitively
	SmartCase  bool // case-insensitive only when the pattern has no uppercase
	Literal    bool // treat the pattern as a fixed string, not a regex
	WordRegexp bool // match whole words only
}

// Matcher is the capability interface every backend implements. It is
// safe for concurrent use by multiple goroutines.
type Matcher interface {
	// Find returns the leftmost-longest match in buf as byte offsets.
	// ok is false when buf contains no match.
	Find(buf []byte) (start, end int, ok bool)

	// Matches reports whether buf contains at least one match. Used for
	// whole-buffer probes of binary files where spans are not needed.
	Matches(buf []byte) bool
}

// CompileError reports a pattern the selected backend rejected.
// Pos is the byte offset of the offending construct within the raw
// pattern, or -1 when the backend does not supply one.
type CompileError struct {
	Pattern string
	Pos     int
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("invalid pattern %q at offset %d: %v", e.Pattern, e.Pos, e.Err)
	}
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compile builds a Matcher for the raw pattern under the given flags and
// backend. Empty patterns are rejected. The returned matcher is immutable.
func Compile(raw string, flags Flags, kind BackendKind) (Matcher, error) {
	if raw == "" {
		return nil, &CompileError{Pattern: raw, Pos: 0, Err: fmt.Errorf("empty pattern")}
	}

	expr := Rewrite(raw, flags)

	switch kind {
	case BackendStd, "":
		return compileStd(raw, expr)
	case BackendGrafana:
		return compileGrafana(raw, expr)
	case BackendDFA:
		return compileDFA(raw, expr)
	}
	return nil, fmt.Errorf("unknown regex backend %q", kind)
}

// Rewrite applies the flag set to the raw pattern, producing the
// expression actually handed to the backend. Literal patterns have their
// metacharacters escaped; casing is expressed with an (?i) prefix so each
// backend applies the same folding; word matching wraps the pattern in
// \b anchors around a non-capturing group.
func Rewrite(raw string, flags Flags) string {
	expr := raw
	if flags.Literal {
		expr = escapeLiteral(expr)
	}
	if flags.WordRegexp {
		expr = `\b(?:` + expr + `)\b`
	}
	if foldCase(raw, flags) {
		expr = `(?i)` + expr
	}
	return expr
}

// foldCase decides case-insensitivity. Smart case folds only when the
// original pattern contains no uppercase rune.
func foldCase(raw string, flags Flags) bool {
	if flags.IgnoreCase {
		return true
	}
	if !flags.SmartCase {
		return false
	}
	for _, r := range raw {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

const literalMeta = `.?*+|^$(){}[]\`

// escapeLiteral escapes regex metacharacters so a fixed-string pattern
// compiles to a literal match.
func escapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(literalMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// errorPos recovers the byte offset of the failing construct from a
// regexp/syntax error by locating the reported expression fragment in
// the pattern. Returns -1 when no position can be determined.
func errorPos(pattern string, err error) int {
	var serr *syntax.Error
	if !errors.As(err, &serr) || serr.Expr == "" {
		return -1
	}
	return strings.Index(pattern, serr.Expr)
}
