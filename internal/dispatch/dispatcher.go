// Package dispatch fans file entries out to a fixed worker pool and
// collects the per-file results back into walker emission order. The
// pool size and queue depth bound both CPU use and memory: the walker
// can only run QueueFactor×workers entries ahead of the scanners.
package dispatch

import (
	"context"
	"errors"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/ru/internal/debug"
	"github.com/standardbeagle/ru/internal/engine"
	"github.com/standardbeagle/ru/internal/pattern"
	"github.com/standardbeagle/ru/internal/types"
	"github.com/standardbeagle/ru/internal/walker"
)

// Config controls one dispatcher run.
type Config struct {
	// Workers is the pool size; 0 means runtime.NumCPU().
	Workers int

	// MaxFileSize skips files larger than this many bytes; 0 applies
	// types.DefaultMaxFileSize.
	MaxFileSize int64

	// SearchBinary scans binary content with a whole-buffer match
	// instead of skipping it.
	SearchBinary bool

	// Scan is passed through to the match engine for every file.
	Scan engine.Options
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func (c Config) maxFileSize() int64 {
	if c.MaxFileSize > 0 {
		return c.MaxFileSize
	}
	return types.DefaultMaxFileSize
}

// QueueSize is the bound for the walker-to-dispatcher channel matching
// cfg's effective worker count.
func QueueSize(cfg Config) int {
	return cfg.workers() * types.QueueFactor
}

// Dispatcher owns the worker pool for one run. The matcher is shared by
// all workers; every backend guarantees concurrent Find/Matches.
type Dispatcher struct {
	cfg      Config
	matcher  pattern.Matcher
	detector *walker.BinaryDetector
}

func New(m pattern.Matcher, cfg Config) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		matcher:  m,
		detector: walker.NewBinaryDetector(),
	}
}

// Run consumes entries from in until it is closed or ctx is cancelled,
// scanning each on one of the pool workers, and sends exactly one
// FileResult per consumed entry to out in FileEntry.Index order. It
// closes out before returning.
func (d *Dispatcher) Run(ctx context.Context, in <-chan types.FileEntry, out chan<- types.FileResult) error {
	defer close(out)

	agg := newAggregator(out)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < d.cfg.workers(); i++ {
		g.Go(func() error {
			for {
				select {
				case entry, ok := <-in:
					if !ok {
						return nil
					}
					if err := agg.submit(gctx, d.scanFile(entry)); err != nil {
						return err
					}
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	err := g.Wait()
	agg.flush(ctx)
	if errors.Is(err, context.Canceled) {
		// Cancellation is an orderly shutdown, not a dispatch failure.
		return nil
	}
	return err
}

// scanFile produces the single FileResult for one entry. Per-file
// failures land in the result; they never abort the pool.
func (d *Dispatcher) scanFile(entry types.FileEntry) types.FileResult {
	res := types.FileResult{Entry: entry}

	if entry.Size > d.cfg.maxFileSize() {
		debug.Warnf("skipping %s: %d bytes exceeds the file size limit", entry.Path, entry.Size)
		res.Skipped = true
		return res
	}

	content, err := os.ReadFile(entry.Path)
	if err != nil {
		debug.Warnf("cannot read %s: %v", entry.Path, err)
		res.Err = err
		return res
	}

	if d.detector.IsBinaryContent(content) {
		res.Binary = true
		if !d.cfg.SearchBinary {
			res.Skipped = true
			return res
		}
		if engine.ScanBinary(d.matcher, content) {
			// Marker match: binary files report matched / not matched,
			// never line spans.
			res.Matches = []types.LineMatch{{LineNo: 0}}
		}
		debug.LogScan("binary %s matched=%v", entry.Path, len(res.Matches) > 0)
		return res
	}

	res.Matches = engine.Scan(d.matcher, content, d.cfg.Scan)
	debug.LogScan("%s: %d matching lines", entry.Path, len(res.Matches))
	return res
}
