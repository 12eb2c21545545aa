package annotation

import (
	stderrors "errors"
	"testing"
)

type wantParam struct {
	typ      string
	name     string
	required bool
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []wantParam
	}{
		{"Real xpos, Real zpos, Real ypos", []wantParam{{"Real", "xpos", true}, {"Real", "zpos", true}, {"Real", "ypos", true}}},
		{"Real xpos, Real zpos[, Real ypos]", []wantParam{{"Real", "xpos", true}, {"Real", "zpos", true}, {"Real", "ypos", false}}},
		{"LuaTable", []wantParam{{"LuaTable", "arg1", true}}},
		{"SyncWeaponID weapon, [PlayerID player]", []wantParam{{"SyncWeaponID", "weapon", true}, {"PlayerID", "player", false}}},
		{"String race[, String race2, ...]", []wantParam{{"String", "race", true}, {"String", "race2", false}, {"Any", "...", false}}},
		{"EGroupID, Real", []wantParam{{"EGroupID", "arg1", true}, {"Real", "arg2", true}}},
		{"Real x[, Boolean]", []wantParam{{"Real", "x", true}, {"Boolean", "arg2", false}}},
		{"[Real x, LuaTable]", []wantParam{{"Real", "x", false}, {"LuaTable", "arg2", false}}},
		{"...", []wantParam{{"Any", "...", true}}},
		{"Real  spaced", []wantParam{{"Real", "spaced", true}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseArgs(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseArgs(%q) returned %d params, want %d: %+v", tt.input, len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				p := got[i]
				if p.Type != w.typ || p.Name != w.name || p.Required != w.required {
					t.Errorf("param %d = {%s %s %v}, want {%s %s %v}", i, p.Type, p.Name, p.Required, w.typ, w.name, w.required)
				}
				if p.Description != nil {
					t.Errorf("param %d has description %q, want none", i, *p.Description)
				}
			}
		})
	}
}

func TestParseArgsEmpty(t *testing.T) {
	for _, input := range []string{"", "   "} {
		if got := ParseArgs(input); len(got) != 0 {
			t.Errorf("ParseArgs(%q) = %+v, want no params", input, got)
		}
	}
}

func TestParseArgsLenientEntries(t *testing.T) {
	tests := []struct {
		input string
		want  []wantParam
	}{
		{"Real x, ", []wantParam{{"Real", "x", true}, {"", "arg2", true}}},
		{"Real x,, Real y", []wantParam{{"Real", "x", true}, {"", "arg2", true}, {"Real", "y", true}}},
		{"Real x[, , Real y]", []wantParam{{"Real", "x", true}, {"", "arg2", false}, {"Real", "y", false}}},
		{"Real x]", []wantParam{{"Real", "x]", true}}},
		{"Real x], Real y", []wantParam{{"Real", "x]", true}, {"Real", "y", true}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseArgs(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseArgs(%q) returned %d params, want %d: %+v", tt.input, len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				p := got[i]
				if p.Type != w.typ || p.Name != w.name || p.Required != w.required {
					t.Errorf("param %d = {%s %s %v}, want {%s %s %v}", i, p.Type, p.Name, p.Required, w.typ, w.name, w.required)
				}
			}
		})
	}
}

func TestCheckArgs(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"Real x, Real y[, Real z]", ""},
		{"", ""},
		{"Real x[]", ""},
		{"Real x,, Real y", "empty entry at position 2"},
		{"Real x, ", "empty entry at position 2"},
		{"Real x[, , Real y]", "empty entry at position 2"},
		{"Real x], Real y", "']' before any '['"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := CheckArgs(tt.input)
			if tt.reason == "" {
				if err != nil {
					t.Fatalf("CheckArgs(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			var argsErr *ArgsError
			if !stderrors.As(err, &argsErr) {
				t.Fatalf("CheckArgs(%q) = %v, want *ArgsError", tt.input, err)
			}
			if argsErr.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", argsErr.Reason, tt.reason)
			}
		})
	}
}
