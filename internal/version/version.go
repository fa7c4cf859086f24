// Package version provides build-time version information.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags, e.g.
// go build -ldflags="-X github.com/egoavara/plugin-convert/internal/version.Version=v1.0.0"
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

// Info returns a single-line version string
func Info() string {
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit == "" {
		commit = "unknown"
	}
	return fmt.Sprintf("plugin-convert %s (commit: %s, go: %s)", Version, commit, runtime.Version())
}
