// Package version provides build and version information for the harness.
// It uses Go's runtime/debug.ReadBuildInfo() to extract VCS metadata
// embedded at build time (Go 1.18+).
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables can be set via ldflags at build time for explicit versioning.
// If not set, they will be populated from runtime/debug.ReadBuildInfo().
var (
	// Version is the semantic version of the build.
	Version = "0.3.0"
	// GitCommit is the git commit hash.
	GitCommit = ""
)

// Info contains the full version information for the build.
type Info struct {
	Version   string
	GitCommit string
	GoVersion string
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	// Pull the VCS revision out of the build settings if it was not set via ldflags.
	if GitCommit == "" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				GitCommit = setting.Value
			}
		}
	}
}

// GetInfo returns the version information for the current build.
func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	if i.GitCommit != "" {
		return fmt.Sprintf("%s (%s, %s)", i.Version, i.GitCommit, i.GoVersion)
	}
	return fmt.Sprintf("%s (%s)", i.Version, i.GoVersion)
}
