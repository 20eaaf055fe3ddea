package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/ru/internal/types"
)

func entry(i int, path string) types.FileEntry {
	return types.FileEntry{Index: i, Path: path}
}

func match(lineNo int, line string, spans ...types.MatchSpan) types.LineMatch {
	return types.LineMatch{LineNo: lineNo, Line: []byte(line), Spans: spans}
}

func render(opts Options, results ...types.FileResult) string {
	var buf bytes.Buffer
	r := New(&buf, opts)
	for _, res := range results {
		r.File(res)
	}
	return buf.String()
}

func TestInlineMode(t *testing.T) {
	out := render(Options{},
		types.FileResult{
			Entry: entry(0, "a.txt"),
			Matches: []types.LineMatch{
				match(1, "foo here", types.MatchSpan{Start: 0, End: 3}),
				match(4, "more foo", types.MatchSpan{Start: 5, End: 8}),
			},
		},
	)

	assert.Equal(t, "a.txt\n1:foo here\n--\n4:more foo\n", out)
}

func TestInlineModeSeparatesFiles(t *testing.T) {
	out := render(Options{},
		types.FileResult{
			Entry:   entry(0, "a.txt"),
			Matches: []types.LineMatch{match(1, "x", types.MatchSpan{Start: 0, End: 1})},
		},
		types.FileResult{Entry: entry(1, "quiet.txt")},
		types.FileResult{
			Entry:   entry(2, "b.txt"),
			Matches: []types.LineMatch{match(9, "x", types.MatchSpan{Start: 0, End: 1})},
		},
	)

	assert.Equal(t, "a.txt\n1:x\n\nb.txt\n9:x\n", out,
		"files without matches produce no output and no separator")
}

func TestInlineContextLines(t *testing.T) {
	res := types.FileResult{
		Entry: entry(0, "f.txt"),
		Matches: []types.LineMatch{
			{
				LineNo: 3,
				Line:   []byte("the match"),
				Spans:  []types.MatchSpan{{Start: 4, End: 9}},
				Before: []types.ContextLine{
					{LineNo: 1, Text: []byte("one")},
					{LineNo: 2, Text: []byte("two")},
				},
				After: []types.ContextLine{
					{LineNo: 4, Text: []byte("four")},
				},
			},
		},
	}

	assert.Equal(t, "f.txt\n1-one\n2-two\n3:the match\n4-four\n",
		render(Options{}, res))
}

func TestInlineMergesOverlappingWindows(t *testing.T) {
	// Two matches three lines apart with generous context: their windows
	// overlap, so the block prints each line once with no separator.
	res := types.FileResult{
		Entry: entry(0, "f.txt"),
		Matches: []types.LineMatch{
			{
				LineNo: 4,
				Line:   []byte("first"),
				Spans:  []types.MatchSpan{{Start: 0, End: 5}},
				Before: []types.ContextLine{
					{LineNo: 2, Text: []byte("b2")},
					{LineNo: 3, Text: []byte("b3")},
				},
				After: []types.ContextLine{
					{LineNo: 5, Text: []byte("mid1")},
					{LineNo: 6, Text: []byte("mid2")},
				},
			},
			{
				LineNo: 7,
				Line:   []byte("second"),
				Spans:  []types.MatchSpan{{Start: 0, End: 6}},
				Before: []types.ContextLine{
					{LineNo: 5, Text: []byte("mid1")},
					{LineNo: 6, Text: []byte("mid2")},
				},
				After: []types.ContextLine{
					{LineNo: 8, Text: []byte("a8")},
				},
			},
		},
	}

	assert.Equal(t,
		"f.txt\n2-b2\n3-b3\n4:first\n5-mid1\n6-mid2\n7:second\n8-a8\n",
		render(Options{}, res))
}

func TestInlineBinaryMarker(t *testing.T) {
	res := types.FileResult{
		Entry:   entry(0, "blob.dat"),
		Binary:  true,
		Matches: []types.LineMatch{{LineNo: 0}},
	}
	assert.Equal(t, "Binary file blob.dat matches.\n", render(Options{}, res))
}

func TestInlineHighlighting(t *testing.T) {
	res := types.FileResult{
		Entry:   entry(0, "f.txt"),
		Matches: []types.LineMatch{match(1, "say foo now", types.MatchSpan{Start: 4, End: 7})},
	}

	plain := render(Options{}, res)
	colored := render(Options{Color: true}, res)

	assert.NotContains(t, plain, "\x1b[")
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "foo")
}

func TestFilesWithMatchesMode(t *testing.T) {
	out := render(Options{Mode: ModeFilesWithMatches},
		types.FileResult{
			Entry:   entry(0, "hit.txt"),
			Matches: []types.LineMatch{match(1, "x", types.MatchSpan{Start: 0, End: 1})},
		},
		types.FileResult{Entry: entry(1, "miss.txt")},
		types.FileResult{Entry: entry(2, "skipped.bin"), Skipped: true},
	)
	assert.Equal(t, "hit.txt\n", out)
}

func TestFilesWithoutMatchMode(t *testing.T) {
	out := render(Options{Mode: ModeFilesWithoutMatch},
		types.FileResult{
			Entry:   entry(0, "hit.txt"),
			Matches: []types.LineMatch{match(1, "x", types.MatchSpan{Start: 0, End: 1})},
		},
		types.FileResult{Entry: entry(1, "miss.txt")},
		types.FileResult{Entry: entry(2, "skipped.bin"), Skipped: true},
	)
	assert.Equal(t, "miss.txt\n", out,
		"skipped files are not reported as match-free")
}

func TestCountMode(t *testing.T) {
	out := render(Options{Mode: ModeCount},
		types.FileResult{
			Entry: entry(0, "two.txt"),
			Matches: []types.LineMatch{
				match(1, "x", types.MatchSpan{Start: 0, End: 1}),
				match(5, "x", types.MatchSpan{Start: 0, End: 1}),
			},
		},
		types.FileResult{Entry: entry(1, "zero.txt")},
	)
	assert.Equal(t, "two.txt:2\n", out)
}
