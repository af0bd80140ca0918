// Package version exposes build metadata for the helm2yaml binary.
package version

import "runtime/debug"

var (
	// Version is the semantic version of the build. It is overridden at
	// build time via -ldflags for release builds.
	Version = "0.0.0+unknown"

	// Revision is the VCS revision the binary was built from.
	Revision = getRevision()
)

func getRevision() string {
	revision := "unknown"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return revision
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			revision = s.Value

			break
		}
	}

	return revision
}
