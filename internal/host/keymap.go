package host

// Editor modes a key binding may apply to.
const (
	// ModeNormal is the host's normal mode.
	ModeNormal = "n"
	// ModeVisual is the host's visual (selection) mode.
	ModeVisual = "v"
)

// Binding describes a key binding registration.
type Binding struct {
	// Modes lists the modes the binding is active in.
	Modes []string

	// Keys is the key sequence (host notation, e.g., "<leader>cs").
	Keys string

	// Description is shown in keymap listings.
	Description string

	// Handler is invoked when the sequence is pressed.
	Handler func()
}

// KeymapProvider registers key bindings with the host.
type KeymapProvider interface {
	// Bind adds a key binding.
	Bind(b Binding) error

	// Unbind removes a binding by modes and key sequence.
	Unbind(modes []string, keys string) error
}
