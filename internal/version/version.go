// Package version carries thinkstruct build metadata, stamped with
// -ldflags at release build time.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
