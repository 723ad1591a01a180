// Package internal exposes the build information of the binaries.
package internal

import (
	"runtime/debug"
	"time"
)

const shortRevisionLen = 7

var (
	BuildRevision = "unknown"
	BuildTime     time.Time
	// BuildModified is true when the binary was built from a dirty tree.
	BuildModified bool
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	applySettings(info.Settings)
}

func applySettings(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if s.Value != "" {
				BuildRevision = s.Value
			}
		case "vcs.time":
			t, err := time.Parse(time.RFC3339, s.Value)
			if err == nil {
				BuildTime = t
			}
		case "vcs.modified":
			BuildModified = s.Value == "true"
		}
	}
}

// Version is the short revision shown in page footers and startup logs.
func Version() string {
	v := BuildRevision
	if len(v) > shortRevisionLen {
		v = v[:shortRevisionLen]
	}

	if BuildModified {
		v += "-dirty"
	}

	return v
}
