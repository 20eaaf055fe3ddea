// Package debug carries the tool's diagnostic streams. Match output goes
// to stdout only; everything here writes to a separate warning/debug
// stream so piped output stays well-formed.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// EnableDebug can be flipped at build time:
// go build -ldflags "-X github.com/standardbeagle/ru/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	mu   sync.Mutex
	warn io.Writer = os.Stderr
	dbg  io.Writer = os.Stderr
)

// SetWarnOutput redirects the warning stream. Tests use this to capture
// warnings; passing nil silences them.
func SetWarnOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	warn = w
}

// SetDebugOutput redirects the debug stream.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	dbg = w
}

// IsDebugEnabled reports whether debug chatter should be emitted, via the
// build flag or the DEBUG environment variable.
func IsDebugEnabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

// Warnf emits a recoverable-problem warning (unreadable directory,
// oversized file, vanished path). Warnings are always printed; they never
// interleave with match output because they use a separate stream.
func Warnf(format string, args ...interface{}) {
	mu.Lock()
	w := warn
	mu.Unlock()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "ru: "+format+"\n", args...)
}

// Logf emits gated debug chatter with a component tag.
func Logf(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	mu.Lock()
	w := dbg
	mu.Unlock()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogWalk is debug chatter for traversal decisions.
func LogWalk(format string, args ...interface{}) {
	Logf("WALK", format, args...)
}

// LogScan is debug chatter for per-file scanning.
func LogScan(format string, args ...interface{}) {
	Logf("SCAN", format, args...)
}
