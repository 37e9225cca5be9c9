package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"quit", Command{Name: CmdQuit}},
		{"q", Command{Name: CmdQuit}},
		{"  :Q  ", Command{Name: CmdQuit}},
		{"h", Command{Name: CmdHelp}},
		{"chat Alice Smith", Command{Name: CmdChat, Args: "Alice Smith"}},
		{"o 5511", Command{Name: CmdChat, Args: "5511"}},
		{"f  ali ", Command{Name: CmdFilter, Args: "ali"}},
		{"refresh", Command{Name: CmdRefresh}},
		{"details", Command{Name: CmdDetails}},
		{"bogus arg", Command{Name: "bogus", Args: "arg"}},
		{"", Command{}},
	}
	for _, tt := range tests {
		if got := ParseCommand(tt.in); got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
