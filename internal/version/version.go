// Package version carries build identity for the ru binary.
package version

// Version is the current semantic version of ru.
const Version = "0.1.0"

// GitCommit and BuildDate are injected at build time with -ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "development"
)

// Info returns the short version string.
func Info() string {
	return Version
}

// FullInfo returns the version with build metadata.
func FullInfo() string {
	return "ru " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}
