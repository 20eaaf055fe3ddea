// Package walker enumerates candidate files under the given roots. The
// walk runs on a single goroutine and feeds a bounded channel, so memory
// stays bounded on very large trees; the emission order (lexical,
// depth-first) is the canonical ordering for all output.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/ru/internal/debug"
	"github.com/standardbeagle/ru/internal/types"
)

// Config controls one traversal.
type Config struct {
	Hidden       bool     // descend into dotfiles and dot-directories
	Follow       bool     // follow symlinked directories (cycle-guarded)
	NoIgnore     bool     // skip all ignore-file processing
	SearchBinary bool     // emit binary files for whole-buffer matching
	MaxDepth     int      // 0 = unlimited
	Include      []string // user globs: when set, files must match one
	Exclude      []string // user globs: matching files are dropped
}

// Walker performs one traversal. A Walker is single-use: the emission
// index and the visited set belong to a single Walk call.
type Walker struct {
	cfg      Config
	detector *BinaryDetector
	visited  map[uint64]struct{}
	out      chan<- types.FileEntry
	index    int
	root     string // current root, for include/exclude-relative globs
}

// New creates a walker for one run.
func New(cfg Config) *Walker {
	return &Walker{
		cfg:      cfg,
		detector: NewBinaryDetector(),
		visited:  make(map[uint64]struct{}),
	}
}

// WalkError is fatal: a root argument that cannot be traversed at all.
// Errors below the roots are warnings, never WalkErrors.
type WalkError struct {
	Root string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("cannot search %s: %v", e.Root, e.Err)
}

func (e *WalkError) Unwrap() error { return e.Err }

// Walk traverses the roots in argument order and sends a FileEntry for
// every candidate file. It closes out before returning. Context
// cancellation stops the traversal promptly; entries already sent stay
// valid.
func (w *Walker) Walk(ctx context.Context, roots []string, out chan<- types.FileEntry) error {
	w.out = out
	defer close(out)

	for _, root := range roots {
		info, err := os.Lstat(root)
		if err != nil {
			return &WalkError{Root: root, Err: err}
		}

		w.root = root

		// An explicitly named file is always searched: ignore rules and
		// binary extension filtering apply to discovered files only.
		if !info.IsDir() {
			if !w.send(ctx, root, 0, info.Size()) {
				// Cancelled mid-send: orderly shutdown, not a failure.
				return nil
			}
			continue
		}

		stack := Stack{LoadRuleSet(root, filepath.Join(root, ".git", "info", "exclude"))}
		if w.cfg.NoIgnore {
			stack = nil
		}
		if err := w.walkDir(ctx, root, 1, stack); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkDir(ctx context.Context, dir string, depth int, stack Stack) error {
	if err := ctx.Err(); err != nil {
		return nil
	}
	if w.cfg.MaxDepth > 0 && depth > w.cfg.MaxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable or vanished directories are non-fatal.
		debug.Warnf("cannot read directory %s: %v", dir, err)
		return nil
	}

	for _, ent := range entries {
		if ctx.Err() != nil {
			return nil
		}

		name := ent.Name()
		if !w.cfg.Hidden && name[0] == '.' {
			continue
		}
		path := filepath.Join(dir, name)

		isDir := ent.IsDir()
		isSymlink := ent.Type()&fs.ModeSymlink != 0
		var target os.FileInfo
		if isSymlink {
			if !w.cfg.Follow {
				continue
			}
			target, err = os.Stat(path)
			if err != nil {
				debug.Warnf("broken symlink %s: %v", path, err)
				continue
			}
			isDir = target.IsDir()
		}

		if stack != nil && stack.Ignored(path, isDir) {
			debug.LogWalk("ignored %s", path)
			continue
		}

		if isDir {
			if isSymlink {
				key, err := w.dirKey(path, target)
				if err != nil {
					debug.Warnf("cannot resolve %s: %v", path, err)
					continue
				}
				if _, seen := w.visited[key]; seen {
					// Symlink cycle: abort descent into this subtree
					// without failing the walk.
					debug.LogWalk("symlink cycle at %s", path)
					continue
				}
				w.visited[key] = struct{}{}
			}

			sub := stack
			if sub != nil {
				// Full slice expression: sibling descents must not share
				// the appended element's backing slot.
				sub = append(sub[:len(sub):len(sub)], LoadRuleSet(path))
			}
			if err := w.walkDir(ctx, path, depth+1, sub); err != nil {
				return err
			}
			continue
		}

		if !ent.Type().IsRegular() && !isSymlink {
			continue
		}
		if !w.fileWanted(path) {
			continue
		}

		// For a followed symlink, ent.Info is the link itself; the size
		// limit must see the target.
		var size int64
		if isSymlink {
			size = target.Size()
		} else {
			info, err := ent.Info()
			if err != nil {
				debug.Warnf("cannot stat %s: %v", path, err)
				continue
			}
			size = info.Size()
		}
		if !w.send(ctx, path, depth, size) {
			return nil
		}
	}
	return nil
}

// fileWanted applies binary extension filtering and the user's
// include/exclude globs. Exclude wins over include; globs match the
// path relative to the walk root, slash-separated.
func (w *Walker) fileWanted(path string) bool {
	if !w.cfg.SearchBinary && w.detector.IsBinaryByExtension(path) {
		return false
	}
	if len(w.cfg.Include) == 0 && len(w.cfg.Exclude) == 0 {
		return true
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, glob := range w.cfg.Exclude {
		if matchGlob(glob, rel) {
			return false
		}
	}
	if len(w.cfg.Include) == 0 {
		return true
	}
	for _, glob := range w.cfg.Include {
		if matchGlob(glob, rel) {
			return true
		}
	}
	return false
}

// matchGlob matches a user glob against the relative path, also trying
// the bare filename so "*.go" behaves the way users expect.
func matchGlob(glob, rel string) bool {
	if ok, _ := doublestar.Match(glob, rel); ok {
		return true
	}
	ok, _ := doublestar.Match(glob, filepath.Base(rel))
	return ok
}

func (w *Walker) send(ctx context.Context, path string, depth int, size int64) bool {
	entry := types.FileEntry{
		Index: w.index,
		Path:  path,
		Depth: depth,
		Size:  size,
	}
	select {
	case w.out <- entry:
		w.index++
		return true
	case <-ctx.Done():
		return false
	}
}
