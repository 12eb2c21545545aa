// Package version holds build information for scardoc.
package version

import "runtime/debug"

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X scardoc/internal/version.Version=1.0.0 -X scardoc/internal/version.Commit=abc123"
var (
	Version   = "0.4.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns the version with a short commit suffix when known.
func Info() string {
	if c := commit(); len(c) > 7 {
		return Version + " (" + c[:7] + ")"
	}
	return Version
}

// Full returns complete version information.
func Full() string {
	return "scardoc version " + Version + "\n" +
		"Commit: " + commit() + "\n" +
		"Built: " + BuildDate
}

// commit falls back to the VCS revision stamped by the go tool.
func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return Commit
}
