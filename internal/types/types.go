// Package types holds the data model shared by the walker, dispatcher,
// match engine and output formatter. Values here are created once and
// never mutated after they cross a package boundary.
package types

// FileEntry describes one candidate file discovered by the walker.
// Index is the walker emission index and is the canonical ordering key
// for all user-facing output: the aggregator emits results strictly in
// Index order no matter which worker finishes first.
type FileEntry struct {
	Index int
	Path  string
	Depth int
	Size  int64
}

// MatchSpan is a matched byte range within a single line. Start is
// inclusive, End exclusive, both 0-based and relative to the line start.
type MatchSpan struct {
	Start int
	End   int
}

// ContextLine is a non-matching line printed around a match in
// windowed-context mode.
type ContextLine struct {
	LineNo int
	Text   []byte
}

// LineMatch is one matching line (possibly with several spans) plus its
// surrounding context. LineNo is 1-based. In invert mode Spans is empty:
// the line "matched" by not containing the pattern.
type LineMatch struct {
	LineNo int
	Line   []byte
	Spans  []MatchSpan
	Before []ContextLine
	After  []ContextLine
}

// FileResult is everything one worker produced for one FileEntry.
// Exactly one FileResult exists per dispatched entry; skipped and failed
// files still produce a result so the aggregator's index sequence has no
// gaps.
type FileResult struct {
	Entry FileEntry

	// Binary marks a file classified as binary content. Binary files
	// carry at most one marker LineMatch (LineNo 0) meaning "the pattern
	// matched somewhere in the raw bytes".
	Binary bool

	// Skipped marks a file that was never scanned (oversized, unreadable).
	Skipped bool

	Matches []LineMatch

	// Err is set when scanning failed for this file only. The run as a
	// whole continues; the renderer never prints Err results as matches.
	Err error
}

// Matched reports whether the result should count toward exit code 0.
func (r FileResult) Matched() bool {
	return r.Err == nil && !r.Skipped && len(r.Matches) > 0
}

const (
	// BinaryProbeBytes is how much of a file's head is inspected for the
	// NUL-byte binary heuristic.
	BinaryProbeBytes = 512

	// DefaultMaxFileSize is the scan limit for a single file; larger
	// files are skipped with a warning.
	DefaultMaxFileSize = 64 * 1024 * 1024

	// QueueFactor sizes the bounded walker-to-worker queue as a multiple
	// of the worker count, keeping memory bounded on very large trees.
	QueueFactor = 2
)
