// Package output renders aggregated file results to a caller-owned
// writer. Rendering is pure with respect to the pipeline: it never does
// I/O beyond the writer and never mutates the results it is given, so
// the same result stream renders identically in any mode.
package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/standardbeagle/ru/internal/types"
)

// Mode selects the output shape.
type Mode int

const (
	// ModeInline prints a path heading followed by matching lines with
	// line numbers, highlighted spans and any requested context.
	ModeInline Mode = iota
	// ModeFilesWithMatches prints only the path of each matching file.
	ModeFilesWithMatches
	// ModeFilesWithoutMatch prints the path of each scanned file with
	// no matches.
	ModeFilesWithoutMatch
	// ModeCount prints path:count for each matching file.
	ModeCount
)

// Options configure one renderer.
type Options struct {
	Mode Mode

	// Color enables ANSI highlighting. The caller decides this; the
	// renderer never sniffs the writer.
	Color bool
}

// Renderer writes results as they arrive from the aggregator. Results
// must be fed in emission order; the renderer only tracks enough state
// to separate files with a blank line.
type Renderer struct {
	w    io.Writer
	opts Options

	pathColor   *color.Color
	lineNoColor *color.Color
	matchColor  *color.Color

	printedFile bool
}

// New builds a renderer for w. Color state is fixed per renderer so
// tests can force either mode regardless of the environment.
func New(w io.Writer, opts Options) *Renderer {
	r := &Renderer{
		w:           w,
		opts:        opts,
		pathColor:   color.New(color.FgGreen, color.Bold),
		lineNoColor: color.New(color.FgYellow),
		matchColor:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{r.pathColor, r.lineNoColor, r.matchColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// File renders one file's result. Skipped and failed files produce no
// output in any mode; their warnings already went to stderr.
func (r *Renderer) File(res types.FileResult) {
	if res.Err != nil || res.Skipped {
		return
	}

	switch r.opts.Mode {
	case ModeFilesWithMatches:
		if res.Matched() {
			fmt.Fprintln(r.w, res.Entry.Path)
		}
	case ModeFilesWithoutMatch:
		if !res.Matched() {
			fmt.Fprintln(r.w, res.Entry.Path)
		}
	case ModeCount:
		if res.Matched() {
			fmt.Fprintf(r.w, "%s:%d\n", res.Entry.Path, len(res.Matches))
		}
	default:
		r.inline(res)
	}
}

func (r *Renderer) inline(res types.FileResult) {
	if !res.Matched() {
		return
	}
	if r.printedFile {
		fmt.Fprintln(r.w)
	}
	r.printedFile = true

	if res.Binary {
		fmt.Fprintf(r.w, "Binary file %s matches.\n", res.Entry.Path)
		return
	}

	r.pathColor.Fprintln(r.w, res.Entry.Path)
	lines := assemble(res.Matches)
	prev := 0
	for _, ln := range lines {
		if prev != 0 && ln.lineNo > prev+1 {
			fmt.Fprintln(r.w, "--")
		}
		prev = ln.lineNo
		if ln.isMatch {
			r.matchLine(ln)
		} else {
			r.lineNoColor.Fprintf(r.w, "%d", ln.lineNo)
			fmt.Fprintf(r.w, "-%s\n", ln.text)
		}
	}
}

func (r *Renderer) matchLine(ln renderLine) {
	r.lineNoColor.Fprintf(r.w, "%d", ln.lineNo)
	fmt.Fprint(r.w, ":")
	pos := 0
	for _, sp := range ln.spans {
		if sp.Start > pos {
			r.w.Write(ln.text[pos:sp.Start])
		}
		r.matchColor.Fprintf(r.w, "%s", ln.text[sp.Start:sp.End])
		pos = sp.End
	}
	if pos < len(ln.text) {
		r.w.Write(ln.text[pos:])
	}
	fmt.Fprintln(r.w)
}

type renderLine struct {
	lineNo  int
	text    []byte
	spans   []types.MatchSpan
	isMatch bool
}

// assemble flattens matches plus their context into one deduplicated,
// line-number-ordered sequence. Overlapping or adjacent context windows
// collapse naturally: each line number appears once, and a match line
// always wins over the same line arriving as someone else's context.
func assemble(matches []types.LineMatch) []renderLine {
	byLine := make(map[int]renderLine)
	add := func(ln renderLine) {
		if existing, ok := byLine[ln.lineNo]; ok && existing.isMatch {
			return
		}
		byLine[ln.lineNo] = ln
	}

	for _, m := range matches {
		for _, cl := range m.Before {
			add(renderLine{lineNo: cl.LineNo, text: cl.Text})
		}
		byLine[m.LineNo] = renderLine{
			lineNo:  m.LineNo,
			text:    m.Line,
			spans:   m.Spans,
			isMatch: true,
		}
		for _, cl := range m.After {
			add(renderLine{lineNo: cl.LineNo, text: cl.Text})
		}
	}

	out := make([]renderLine, 0, len(byLine))
	for _, ln := range byLine {
		out = append(out, ln)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].lineNo < out[j].lineNo })
	return out
}
