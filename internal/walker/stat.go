package walker

import (
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// realPathKey hashes the fully resolved path so the visited set stores
// compact fixed-size keys instead of whole path strings.
func realPathKey(path string) (uint64, error) {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64String(real), nil
}
