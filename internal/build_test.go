package internal

import (
	"runtime/debug"
	"testing"
	"time"
)

func Test_Version(t *testing.T) {
	tests := map[string]struct {
		settings []debug.BuildSetting
		want     string
		wantTime time.Time
	}{
		"ok, no vcs info": {
			want: "unknown",
		},
		"ok, clean tree": {
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "3f2a9c1d8e7b6a5f4e3d2c1b0a9f8e7d6c5b4a39"},
				{Key: "vcs.time", Value: "2024-03-01T10:00:00Z"},
				{Key: "vcs.modified", Value: "false"},
			},
			want:     "3f2a9c1",
			wantTime: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		"ok, dirty tree": {
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "3f2a9c1d8e7b6a5f4e3d2c1b0a9f8e7d6c5b4a39"},
				{Key: "vcs.modified", Value: "true"},
			},
			want: "3f2a9c1-dirty",
		},
		"ok, invalid time is ignored": {
			settings: []debug.BuildSetting{
				{Key: "vcs.time", Value: "yesterday"},
			},
			want: "unknown",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			resetBuildInfo(t)

			applySettings(tc.settings)

			if got := Version(); got != tc.want {
				t.Errorf("expected version %q got %q", tc.want, got)
			}

			if !BuildTime.Equal(tc.wantTime) {
				t.Errorf("expected time %v got %v", tc.wantTime, BuildTime)
			}
		})
	}
}

func resetBuildInfo(t *testing.T) {
	t.Helper()

	rev, ts, mod := BuildRevision, BuildTime, BuildModified
	t.Cleanup(func() {
		BuildRevision, BuildTime, BuildModified = rev, ts, mod
	})

	BuildRevision, BuildTime, BuildModified = "unknown", time.Time{}, false
}
