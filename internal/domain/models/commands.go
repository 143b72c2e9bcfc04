package models

import "strings"

// CommandType enumerates the operator queries accepted over WhatsApp.
type CommandType string

const (
	CommandStock   CommandType = "stock"
	CommandDue     CommandType = "due"
	CommandPending CommandType = "pending"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed operator instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. Only the command word is
// lower-cased; arguments keep their case because party names match exactly.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Raw: message}

	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandStock):
		cmd.Type = CommandStock
	case string(CommandDue):
		cmd.Type = CommandDue
	case string(CommandPending):
		cmd.Type = CommandPending
	case string(CommandHelp):
		cmd.Type = CommandHelp
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
