//go:build !unix

package walker

import "os"

// dirKey identifies a directory for symlink cycle detection. Without
// stable inode numbers the resolved real path is the identity.
func (w *Walker) dirKey(path string, _ os.FileInfo) (uint64, error) {
	return realPathKey(path)
}
