//go:build unix

package walker

import (
	"encoding/binary"
	"os"
	"syscall"

	"github.com/cespare/xxhash/v2"
)

// dirKey identifies a directory for symlink cycle detection. On unix the
// device/inode pair pins the real directory regardless of how many link
// chains reach it; the hashed real path is the fallback when the stat
// type is unexpected.
func (w *Walker) dirKey(path string, info os.FileInfo) (uint64, error) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[0:8], uint64(st.Dev))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(st.Ino))
		return xxhash.Sum64(buf[:]), nil
	}
	return realPathKey(path)
}
