package paths

import (
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	root := filepath.FromSlash("/project")
	tests := []struct {
		name string
		p    string
		want string
	}{
		{"relative", ".scardoc/snapshots.db", filepath.FromSlash("/project/.scardoc/snapshots.db")},
		{"absolute", filepath.FromSlash("/var/db.sqlite"), filepath.FromSlash("/var/db.sqlite")},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(root, tt.p); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.p, got, tt.want)
			}
		})
	}
}

func TestRelative(t *testing.T) {
	root := filepath.FromSlash("/game/scar")
	tests := []struct {
		name string
		path string
		want string
	}{
		{"nested", filepath.FromSlash("/game/scar/ai/squad.scar"), "ai/squad.scar"},
		{"direct", filepath.FromSlash("/game/scar/util.scar"), "util.scar"},
		{"root is file", root, "scar"},
		{"outside", filepath.FromSlash("/other/x.scar"), "/other/x.scar"},
		{"dotted name inside", filepath.FromSlash("/game/scar/..hidden.scar"), "..hidden.scar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relative(root, tt.path); got != tt.want {
				t.Errorf("Relative(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsWithin(t *testing.T) {
	root := filepath.FromSlash("/repo")
	if !IsWithin(root, filepath.FromSlash("/repo/a/b.scar")) {
		t.Error("nested path should be within root")
	}
	if IsWithin(root, filepath.FromSlash("/elsewhere/b.scar")) {
		t.Error("sibling path should not be within root")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(`scar\ai\squad.scar`); got != "scar/ai/squad.scar" {
		t.Errorf("Normalize = %q", got)
	}
}
