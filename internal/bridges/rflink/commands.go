package rflink

import "fmt"

// CommandKind identifies a queued command.
type CommandKind int

// Command kinds.
const (
	// CommandSend forwards Text to the receiver.
	CommandSend CommandKind = iota + 1

	// CommandSetMode changes the publish mode to Mode.
	CommandSetMode

	// CommandReset performs a configuration reset.
	CommandReset
)

// String returns the command name used in logs.
func (k CommandKind) String() string {
	switch k {
	case CommandSend:
		return "send"
	case CommandSetMode:
		return "set_mode"
	case CommandReset:
		return "reset"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is work queued for the bridge control loop.
type Command struct {
	Kind CommandKind
	Text string
	Mode PublishMode

	// done receives the result when the caller waits for it (Execute).
	done chan error
}

// SendCommand forwards text to the receiver verbatim.
func SendCommand(text string) Command {
	return Command{Kind: CommandSend, Text: text}
}

// SetModeCommand selects a publish mode.
func SetModeCommand(mode PublishMode) Command {
	return Command{Kind: CommandSetMode, Mode: mode}
}

// ResetCommand forces the publish mode back to STANDARD.
func ResetCommand() Command {
	return Command{Kind: CommandReset}
}

// reply delivers the result to a waiting caller, if any.
func (c Command) reply(err error) {
	if c.done != nil {
		c.done <- err
	}
}
