package engine

import "bytes"

// LineScanner provides zero-allocation line iteration over byte content.
// It performs a single-pass scan, computing line boundaries on demand
// without allocating a slice of strings the way bytes.Split does.
//
// Usage:
//
//	s := NewLineScanner(content)
//	for s.Scan() {
//	    line := s.Bytes()      // zero-copy view of the current line
//	    n := s.LineNumber()    // 1-based
//	}
//
// Lines are split on '\n'; a trailing '\r' is stripped so CRLF content
// produces the same lines as LF content. Content is never required to be
// valid UTF-8: invalid bytes pass through untouched.
type LineScanner struct {
	data    []byte
	start   int // start of current line
	end     int // end of current line (exclusive, before newline)
	pos     int // current position in data
	lineNum int // current line number (1-based)
	done    bool
}

// NewLineScanner creates a scanner positioned before the first line.
func NewLineScanner(data []byte) *LineScanner {
	return &LineScanner{data: data}
}

// Scan advances to the next line. Returns false when done.
func (s *LineScanner) Scan() bool {
	if s.done || s.pos >= len(s.data) {
		s.done = true
		return false
	}

	s.start = s.pos
	s.lineNum++

	idx := bytes.IndexByte(s.data[s.pos:], '\n')
	if idx < 0 {
		// Last line without trailing newline.
		s.end = len(s.data)
		s.pos = len(s.data)
	} else {
		s.end = s.pos + idx
		s.pos = s.pos + idx + 1
	}

	if s.end > s.start && s.data[s.end-1] == '\r' {
		s.end--
	}

	return true
}

// Bytes returns the current line as a zero-copy view into the content.
// The slice is valid until the underlying content is released.
func (s *LineScanner) Bytes() []byte {
	return s.data[s.start:s.end]
}

// LineNumber returns the current line number (1-based).
func (s *LineScanner) LineNumber() int {
	return s.lineNum
}

// Offset returns the byte offset of the current line start in the content.
func (s *LineScanner) Offset() int {
	return s.start
}

// CountLines counts lines without allocation, for pre-sizing result
// slices. Content not ending in '\n' has one more line than newlines.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		return n + 1
	}
	return n
}
