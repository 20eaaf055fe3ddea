package walker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/ru/internal/debug"
	"github.com/standardbeagle/ru/internal/types"
)

// collect runs one traversal and gathers the emitted entries.
func collect(t *testing.T, cfg Config, roots ...string) ([]types.FileEntry, error) {
	t.Helper()
	out := make(chan types.FileEntry, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- New(cfg).Walk(context.Background(), roots, out)
	}()

	var entries []types.FileEntry
	for e := range out {
		entries = append(entries, e)
	}
	return entries, <-errCh
}

func paths(t *testing.T, root string, entries []types.FileEntry) []string {
	t.Helper()
	var rels []string
	for _, e := range entries {
		rel, err := filepath.Rel(root, e.Path)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	return rels
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkLexicalDepthFirstOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "zz.txt"), "z")
	writeFile(t, filepath.Join(root, "aa.txt"), "a")
	writeFile(t, filepath.Join(root, "mid", "inner.txt"), "i")
	writeFile(t, filepath.Join(root, "mid", "deep", "leaf.txt"), "l")

	entries, err := collect(t, Config{}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"aa.txt",
		"mid/deep/leaf.txt",
		"mid/inner.txt",
		"zz.txt",
	}, paths(t, root, entries))

	for i, e := range entries {
		assert.Equal(t, i, e.Index, "emission indices are dense and ordered")
	}
}

func TestWalkHiddenFiltering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "seen.txt"), "x")
	writeFile(t, filepath.Join(root, ".hidden.txt"), "x")
	writeFile(t, filepath.Join(root, ".dir", "inside.txt"), "x")

	entries, err := collect(t, Config{}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"seen.txt"}, paths(t, root, entries))

	entries, err = collect(t, Config{Hidden: true}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{".dir/inside.txt", ".hidden.txt", "seen.txt"},
		paths(t, root, entries))
}

func TestWalkHonorsIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "skipped.txt\nbuild/\n")
	writeFile(t, filepath.Join(root, "skipped.txt"), "x")
	writeFile(t, filepath.Join(root, "kept.txt"), "x")
	writeFile(t, filepath.Join(root, "build", "out.txt"), "x")
	writeFile(t, filepath.Join(root, "sub", ".gitignore"), "local.txt\n")
	writeFile(t, filepath.Join(root, "sub", "local.txt"), "x")
	writeFile(t, filepath.Join(root, "sub", "other.txt"), "x")

	entries, err := collect(t, Config{}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept.txt", "sub/other.txt"}, paths(t, root, entries))

	entries, err = collect(t, Config{NoIgnore: true}, root)
	require.NoError(t, err)
	assert.Contains(t, paths(t, root, entries), "skipped.txt")
	assert.Contains(t, paths(t, root, entries), "build/out.txt")
}

func TestWalkExplicitFileRootAlwaysSearched(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "image.png")
	writeFile(t, target, "not really an image")

	// Discovered: filtered out by extension.
	entries, err := collect(t, Config{}, root)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Named directly: always emitted.
	entries, err = collect(t, Config{}, target)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, target, entries[0].Path)
}

func TestWalkBinaryExtensionFiltering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.png"), "x")
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	entries, err := collect(t, Config{}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, paths(t, root, entries))

	entries, err = collect(t, Config{SearchBinary: true}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "a.txt"}, paths(t, root, entries))
}

func TestWalkDepthLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), "x")
	writeFile(t, filepath.Join(root, "one", "mid.txt"), "x")
	writeFile(t, filepath.Join(root, "one", "two", "deep.txt"), "x")

	entries, err := collect(t, Config{MaxDepth: 2}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"one/mid.txt", "top.txt"}, paths(t, root, entries))
}

func TestWalkIncludeExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "x")
	writeFile(t, filepath.Join(root, "main_test.go"), "x")
	writeFile(t, filepath.Join(root, "notes.md"), "x")

	entries, err := collect(t, Config{Include: []string{"*.go"}}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "main_test.go"}, paths(t, root, entries))

	entries, err = collect(t, Config{
		Include: []string{"*.go"},
		Exclude: []string{"*_test.go"},
	}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, paths(t, root, entries))
}

func TestWalkBadRootIsFatal(t *testing.T) {
	_, err := collect(t, Config{}, filepath.Join(t.TempDir(), "does-not-exist"))
	var werr *WalkError
	require.ErrorAs(t, err, &werr)
}

func TestWalkSymlinkNotFollowedByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real", "file.txt"), "x")
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))

	entries, err := collect(t, Config{}, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"real/file.txt"}, paths(t, root, entries))
}

func TestWalkUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "readable.txt"), "x")
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "unseen.txt"), "x")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var warnings bytes.Buffer
	debug.SetWarnOutput(&warnings)
	t.Cleanup(func() { debug.SetWarnOutput(os.Stderr) })

	entries, err := collect(t, Config{}, root)
	require.NoError(t, err, "an unreadable subdirectory never fails the walk")
	assert.Equal(t, []string{"readable.txt"}, paths(t, root, entries))
	assert.Contains(t, warnings.String(), "locked",
		"the skipped directory is reported on the warning stream")
}

func TestWalkSymlinkedFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.txt"), "0123456789")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))

	entries, err := collect(t, Config{Follow: true}, root)
	require.NoError(t, err)

	sizes := make(map[string]int64)
	for _, e := range entries {
		sizes[filepath.Base(e.Path)] = e.Size
	}
	assert.EqualValues(t, 10, sizes["real.txt"])
	assert.EqualValues(t, 10, sizes["link.txt"],
		"a followed symlink reports the target's size, not the link's")
}

func TestWalkSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dir", "file.txt"), "x")
	// Cycle: dir/loop points back at the root.
	require.NoError(t, os.Symlink(root, filepath.Join(root, "dir", "loop")))

	entries, err := collect(t, Config{Follow: true}, root)
	require.NoError(t, err)

	// The traversal must terminate; each regular file appears a bounded
	// number of times despite the cycle.
	count := 0
	for _, e := range entries {
		if filepath.Base(e.Path) == "file.txt" {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 1)
	assert.LessOrEqual(t, count, 2)
}

func TestWalkCancellation(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		writeFile(t, filepath.Join(root, name+".txt"), "x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan types.FileEntry)
	err := New(Config{}).Walk(ctx, []string{root}, out)
	require.NoError(t, err, "cancellation is not a traversal failure")

	// An explicit file root interrupted mid-send is equally orderly.
	out = make(chan types.FileEntry)
	err = New(Config{}).Walk(ctx, []string{filepath.Join(root, "a.txt")}, out)
	require.NoError(t, err)
}
