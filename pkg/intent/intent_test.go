package intent

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		command    string
		wantAction string
		wantTarget string
	}{
		{"install firefox", "install", "firefox"},
		{"add firefox", "install", "firefox"},
		{"get htop", "install", "htop"},
		{"remove firefox", "remove", "firefox"},
		{"uninstall firefox", "remove", "firefox"},
		{"delete vim", "remove", "vim"},
		{"update", "update", ""},
		{"upgrade", "update", ""},
		{"search editor", "search", "editor"},
		{"find editor", "search", "editor"},
		{"list", "list", ""},
		{"show", "list", ""},
		{"rollback", "rollback", ""},
		{"undo", "rollback", ""},
		{"INSTALL Firefox", "install", "firefox"},
		{"  install   firefox  ", "install", "firefox"},
		{"frobnicate widget", "frobnicate", "widget"},
	}
	for _, tt := range tests {
		got := Parse(tt.command)
		if got.Action != tt.wantAction || got.Target != tt.wantTarget {
			t.Errorf("Parse(%q) = (%q, %q), want (%q, %q)",
				tt.command, got.Action, got.Target, tt.wantAction, tt.wantTarget)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	for _, command := range []string{"", "   ", "\t\n"} {
		got := Parse(command)
		if got.Action != ActionUnknown {
			t.Errorf("Parse(%q).Action = %q, want %q", command, got.Action, ActionUnknown)
		}
		if got.Target != "" {
			t.Errorf("Parse(%q).Target = %q, want empty", command, got.Target)
		}
	}
}

func TestParseIgnoresExtraWords(t *testing.T) {
	got := Parse("install firefox please right now")
	if got.Action != "install" || got.Target != "firefox" {
		t.Errorf("Parse = (%q, %q), want (install, firefox)", got.Action, got.Target)
	}
}

func TestParseOptionsNeverNil(t *testing.T) {
	for _, command := range []string{"", "install firefox"} {
		if Parse(command).Options == nil {
			t.Errorf("Parse(%q).Options is nil", command)
		}
	}
}
