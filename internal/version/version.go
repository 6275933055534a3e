// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with -ldflags "-X rent-preview/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("rent-preview %s (built %s, commit %s)", Version, BuildTime, GitCommit)
}
