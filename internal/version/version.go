// Package version exposes the build metadata stamped into release binaries.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at release time via -ldflags; a source build reports "dev".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info renders the one-line banner printed by the version command.
func Info() string {
	return fmt.Sprintf("prospect %s (commit %s, built %s, %s)",
		Version, Commit, Date, runtime.Version())
}
