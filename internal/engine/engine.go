// Package engine scans a single file's content against a compiled
// matcher and produces per-line match spans. A scan is stateless: it
// never observes anything from a prior scan of a different file, so any
// worker can scan any file with the one shared matcher.
package engine

import (
	"github.com/standardbeagle/ru/internal/pattern"
	"github.com/standardbeagle/ru/internal/types"
)

// Options control one scan. The zero value means: plain match, no
// context, unlimited matches.
type Options struct {
	// Invert flips the per-line match decision: lines with zero spans
	// are reported as matching, with empty Spans. Inversion is a
	// transformation over the line-level boolean, not over spans.
	Invert bool

	// Before and After are the context line counts around each match.
	Before int
	After  int

	// MaxCount stops scanning after this many matching lines (0 means
	// unlimited). Trailing after-context of the final match is still
	// collected.
	MaxCount int

	// FirstMatchOnly stops at the first matching line. List modes use
	// this: they only need to know whether the file matched at all.
	FirstMatchOnly bool
}

// Scan splits content on line terminators and reports every matching
// line with its spans and requested context. Line numbers are 1-based;
// span offsets are 0-based within the line. Content need not be valid
// UTF-8; lines are matched on their raw bytes.
func Scan(m pattern.Matcher, content []byte, opts Options) []types.LineMatch {
	var results []types.LineMatch

	var before *contextRing
	if opts.Before > 0 {
		before = newContextRing(opts.Before)
	}

	// Matches still owed after-context lines, as indexes into results.
	type pendingAfter struct {
		idx       int
		remaining int
	}
	var open []pendingAfter

	limit := opts.MaxCount
	if opts.FirstMatchOnly {
		limit = 1
	}
	matched := 0
	limitReached := false

	sc := NewLineScanner(content)
	for sc.Scan() {
		line := sc.Bytes()
		lineNo := sc.LineNumber()

		var spans []types.MatchSpan
		isMatch := false
		if !limitReached {
			spans = findSpans(m, line)
			isMatch = len(spans) > 0
			if opts.Invert {
				isMatch = !isMatch
				spans = nil
			}
		}

		if isMatch {
			lm := types.LineMatch{
				LineNo: lineNo,
				Line:   copyBytes(line),
				Spans:  spans,
			}
			if before != nil {
				lm.Before = before.take()
			}
			results = append(results, lm)
			if opts.After > 0 {
				open = append(open, pendingAfter{idx: len(results) - 1, remaining: opts.After})
			}
			matched++
			if limit > 0 && matched >= limit {
				limitReached = true
			}
			continue
		}

		// Non-matching line: it may be after-context for earlier matches
		// and before-context for later ones.
		if len(open) > 0 {
			cl := types.ContextLine{LineNo: lineNo, Text: copyBytes(line)}
			keep := open[:0]
			for _, p := range open {
				results[p.idx].After = append(results[p.idx].After, cl)
				p.remaining--
				if p.remaining > 0 {
					keep = append(keep, p)
				}
			}
			open = keep
		}
		if before != nil {
			before.push(types.ContextLine{LineNo: lineNo, Text: copyBytes(line)})
		}

		if limitReached && len(open) == 0 {
			break
		}
	}

	return results
}

// ScanBinary probes a binary buffer for a match anywhere in the raw
// bytes. Binary files never report spans, only matched / not matched.
func ScanBinary(m pattern.Matcher, content []byte) bool {
	return m.Matches(content)
}

// findSpans collects every match on one line, scanning forward from the
// end of the previous span. Each backend returns leftmost-longest
// matches, so spans arrive ordered by start with the longest match at
// each start; spans never overlap.
func findSpans(m pattern.Matcher, line []byte) []types.MatchSpan {
	var spans []types.MatchSpan
	from := 0
	for from <= len(line) {
		s, e, ok := m.Find(line[from:])
		if !ok {
			break
		}
		start, end := from+s, from+e
		spans = append(spans, types.MatchSpan{Start: start, End: end})
		if end == start {
			// Zero-width match: step one byte so the scan terminates.
			from = end + 1
		} else {
			from = end
		}
	}
	return spans
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// contextRing keeps the most recent N non-matching lines as candidate
// before-context. N is small (a context flag value), so the shift on
// overflow is cheaper than real ring arithmetic.
type contextRing struct {
	buf  []types.ContextLine
	size int
}

func newContextRing(size int) *contextRing {
	return &contextRing{size: size}
}

func (r *contextRing) push(cl types.ContextLine) {
	if len(r.buf) == r.size {
		copy(r.buf, r.buf[1:])
		r.buf = r.buf[:r.size-1]
	}
	r.buf = append(r.buf, cl)
}

// take returns the buffered lines and clears the ring: context between
// two nearby matches belongs to the earlier match's window only once.
func (r *contextRing) take() []types.ContextLine {
	if len(r.buf) == 0 {
		return nil
	}
	out := make([]types.ContextLine, len(r.buf))
	copy(out, r.buf)
	r.buf = r.buf[:0]
	return out
}
