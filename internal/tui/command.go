package tui

import "strings"

// Command names accepted by the : prompt.
const (
	CmdQuit    = "quit"
	CmdHelp    = "help"
	CmdChat    = "chat"
	CmdFilter  = "filter"
	CmdRefresh = "refresh"
	CmdDetails = "details"
)

var commandAliases = map[string]string{
	"q":  CmdQuit,
	"h":  CmdHelp,
	"f":  CmdFilter,
	"r":  CmdRefresh,
	"o":  CmdChat,
	"q!": CmdQuit,
}

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':'). Aliases
// are expanded to their full name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if full, ok := commandAliases[cmd.Name]; ok {
		cmd.Name = full
	}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}
