// Package utils holds small helpers shared by dispatch packages that do not
// warrant a package of their own.
package utils

import "fmt"

// Build metadata, overridden at link time with
// -ldflags "-X github.com/papercomputeco/dispatch/pkg/utils.Version=...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// BuildInfo formats the build metadata as printed by `dispatch version`.
func BuildInfo() string {
	return fmt.Sprintf("Version: %s\nSha: %s\nBuilt at: %s\n", Version, Sha, Buildtime)
}
