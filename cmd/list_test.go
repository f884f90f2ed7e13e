package cmd

import (
	"testing"

	"github.com/mj1618/winmatch/internal/platform"
)

func TestListCommand_Flags(t *testing.T) {
	flags := listCmd.Flags()

	tests := []struct {
		name     string
		flagType string
	}{
		{"title", "string"},
		{"pid", "int"},
	}

	for _, tt := range tests {
		f := flags.Lookup(tt.name)
		if f == nil {
			t.Errorf("expected flag %q not found", tt.name)
			continue
		}
		if f.Value.Type() != tt.flagType {
			t.Errorf("flag %q: expected type %q, got %q", tt.name, tt.flagType, f.Value.Type())
		}
	}
}

func TestListCommand_IsRegistered(t *testing.T) {
	for _, c := range rootCmd.Commands() {
		if c.Name() == "list" {
			return
		}
	}
	t.Error("list command not registered on root")
}

func TestFilterWindows(t *testing.T) {
	windows := []platform.Window{
		{Handle: 1, Title: "Fantasy Game", PID: 10},
		{Handle: 2, Title: "Fantasy Game Launcher", PID: 11},
		{Handle: 3, Title: "Editor", PID: 10},
	}

	tests := []struct {
		title string
		pid   int
		want  []platform.Handle
	}{
		{"", 0, []platform.Handle{1, 2, 3}},
		{"Fantasy", 0, []platform.Handle{1, 2}},
		{"", 10, []platform.Handle{1, 3}},
		{"Launcher", 10, nil},
	}
	for _, tt := range tests {
		got := filterWindows(windows, tt.title, tt.pid)
		if len(got) != len(tt.want) {
			t.Errorf("filter(%q, %d) = %d windows, want %d", tt.title, tt.pid, len(got), len(tt.want))
			continue
		}
		for i, w := range got {
			if w.Handle != tt.want[i] {
				t.Errorf("filter(%q, %d)[%d] = %d, want %d", tt.title, tt.pid, i, w.Handle, tt.want[i])
			}
		}
	}
}
