package bot

import (
	"strings"
)

// Command names.
const (
	CmdChallenge = "challenge"
	CmdAccept    = "accept"
	CmdStart     = "start"
	CmdPlay      = "play"
	CmdReset     = "reset"
	CmdResign    = "resign"
	CmdDraw      = "draw"
	CmdHello     = "hello"
	CmdHistory   = "history"
	CmdHelp      = "help"
)

// Command is one parsed chat command.
type Command struct {
	Room    string
	Invoker string
	Name    string
	Args    []string
}

// Target is the optional user named by the arguments. Display names may
// contain spaces, so all arguments are joined.
func (c Command) Target() string {
	return sanitizeUserArg(strings.Join(c.Args, " "))
}

// Arg returns the i-th argument or "".
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// ParseCommand strips prefix from text and splits the rest into a
// lower-cased name and its arguments. ok is false when text does not
// start with prefix or names nothing.
func ParseCommand(prefix, text string) (name string, args []string, ok bool) {
	raw := strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(raw, prefix) {
		return "", nil, false
	}
	parts := strings.Fields(strings.TrimPrefix(raw, prefix))
	if len(parts) == 0 {
		return "", nil, false
	}
	return strings.ToLower(parts[0]), parts[1:], true
}

func sanitizeUserArg(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	return strings.TrimSpace(s)
}
