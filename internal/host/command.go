package host

// CommandFunc is an invocable user command handler.
// args carries the remaining command-line arguments; handlers treat a
// missing argument as "prompt the user".
type CommandFunc func(args []string) error

// Command describes a user-invocable command registration.
type Command struct {
	// Name is the command name as seen by the user (e.g., "CSeekSearch").
	Name string

	// Description is shown in command listings.
	Description string

	// Handler is invoked when the user runs the command.
	Handler CommandFunc
}

// CommandProvider registers user-invocable commands with the host.
type CommandProvider interface {
	// Register adds a command. Registering a duplicate name is an error.
	Register(cmd Command) error

	// Unregister removes a command by name.
	Unregister(name string) error
}
