// Package buildinfo carries the version stamp of the shop binary. The
// variables are overwritten with -ldflags "-X" at release time.
package buildinfo

import "fmt"

var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// String formats the stamp as printed by `shop version`.
func String() string {
	return fmt.Sprintf("shop %s (commit %s, branch %s, built %s)", Version, GitCommit, GitBranch, BuildDate)
}
