package walker

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/ru/internal/types"
)

// BinaryDetector classifies files as binary so they are excluded from
// line-oriented scanning. Detection is two-stage: a free extension check
// in the walker, then a content probe on the first bytes once a worker
// has read the file.
type BinaryDetector struct {
	extensions map[string]bool
}

// NewBinaryDetector builds a detector with the common binary extension
// set. Text-like formats that merely look unusual (.svg, .map, .proto)
// are explicitly allowed.
func NewBinaryDetector() *BinaryDetector {
	return &BinaryDetector{extensions: map[string]bool{
		// Images and fonts
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
		".bmp": true, ".ico": true, ".webp": true, ".tiff": true,
		".woff": true, ".woff2": true, ".ttf": true, ".otf": true,
		".svg": false,

		// Archives
		".zip": true, ".tar": true, ".gz": true, ".bz2": true,
		".xz": true, ".7z": true, ".rar": true, ".jar": true,

		// Executables and object code
		".exe": true, ".dll": true, ".so": true, ".dylib": true,
		".a": true, ".o": true, ".bin": true, ".class": true,
		".pyc": true, ".pyo": true,

		// Media
		".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
		".wav": true, ".flac": true, ".ogg": true,

		// Documents and databases
		".pdf": true, ".doc": true, ".docx": true, ".xls": true,
		".xlsx": true, ".db": true, ".sqlite": true, ".sqlite3": true,

		// Text formats with misleading names
		".map": false, ".proto": false,
	}}
}

// IsBinaryByExtension reports binary-ness from the filename alone, with
// no I/O. Unknown extensions are assumed text; the content probe decides.
func (d *BinaryDetector) IsBinaryByExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	isBinary, known := d.extensions[ext]
	return known && isBinary
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// magicNumbers are file-format signatures that identify binary content
// even when the probed head happens to contain no NUL byte.
var magicNumbers = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x50, 0x4B, 0x03, 0x04}, // zip
	{0x50, 0x4B, 0x05, 0x06}, // zip (empty archive)
	{0x89, 0x50, 0x4E, 0x47}, // png
	{0xFF, 0xD8, 0xFF},       // jpeg
	{0x47, 0x49, 0x46, 0x38}, // gif
	{0x25, 0x50, 0x44, 0x46}, // pdf
	{0x7F, 0x45, 0x4C, 0x46}, // elf
	{0xCA, 0xFE, 0xBA, 0xBE}, // mach-o
	{0x77, 0x4F, 0x46, 0x46}, // woff
	{0x77, 0x4F, 0x46, 0x32}, // woff2
}

// IsBinaryContent probes the first chunk of content. A UTF-8 BOM marks
// the file as text regardless of what follows; a known magic number or a
// NUL byte in the probe window means binary.
func (d *BinaryDetector) IsBinaryContent(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	if bytes.HasPrefix(content, utf8BOM) {
		return false
	}
	for _, magic := range magicNumbers {
		if bytes.HasPrefix(content, magic) {
			return true
		}
	}
	probe := content
	if len(probe) > types.BinaryProbeBytes {
		probe = probe[:types.BinaryProbeBytes]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
