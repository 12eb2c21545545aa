package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() {
		Version, Commit = origVersion, origCommit
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		wantExact string
	}{
		{name: "short commit", version: "1.0.0", commit: "abc", wantExact: "1.0.0"},
		{name: "exactly 7 char commit", version: "2.0.0", commit: "1234567", wantExact: "2.0.0"},
		{name: "full commit hash", version: "1.0.0", commit: "abc1234567890", wantExact: "1.0.0 (abc1234)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = tt.version, tt.commit
			if got := Info(); got != tt.wantExact {
				t.Errorf("Info() = %q, want %q", got, tt.wantExact)
			}
		})
	}
}

func TestInfoUnknownCommit(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() {
		Version, Commit = origVersion, origCommit
	}()

	Version, Commit = "1.0.0", "unknown"
	if got := Info(); !strings.HasPrefix(got, "1.0.0") {
		t.Errorf("Info() = %q, want prefix 1.0.0", got)
	}
}

func TestFull(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	defer func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	}()

	Version = "1.2.3"
	Commit = "abcdef123456"
	BuildDate = "2024-01-15"

	got := Full()
	for _, part := range []string{"scardoc version 1.2.3", "Commit: abcdef123456", "Built: 2024-01-15"} {
		if !strings.Contains(got, part) {
			t.Errorf("Full() = %q, want to contain %q", got, part)
		}
	}
}
