// Package version reports the build of the proposals binary.
package version

import "runtime/debug"

// Version is the release version, set at build time with -ldflags.
var Version = "development"

// Commit is the git commit hash, set at build time with -ldflags.
var Commit = "unknown"

// String returns the version followed by the commit when it is known.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// Current returns the build info. A development build takes the commit from
// the VCS stamp the toolchain embeds, when there is one.
func Current() Info {
	info := Info{Version: Version, Commit: Commit}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Commit == "unknown" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}
