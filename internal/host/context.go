package host

import "errors"

// Host wiring errors.
var (
	// ErrNoUI is returned when the required UI provider is missing.
	ErrNoUI = errors.New("host context missing UI provider")

	// ErrNoClipboard is returned when the required clipboard provider is missing.
	ErrNoClipboard = errors.New("host context missing clipboard provider")

	// ErrNoCommands is returned when the required command provider is missing.
	ErrNoCommands = errors.New("host context missing command provider")

	// ErrNoKeymaps is returned when the required keymap provider is missing.
	ErrNoKeymaps = errors.New("host context missing keymap provider")

	// ErrNoSelection is returned when the required selection provider is missing.
	ErrNoSelection = errors.New("host context missing selection provider")
)

// Context aggregates the providers an embedding host supplies.
// Chat is the only optional field; nil means no chat integration and
// analysis output falls back to the clipboard.
type Context struct {
	// UI provides notifications and input prompts.
	UI UIProvider

	// Clipboard writes result text to the system clipboard.
	Clipboard ClipboardProvider

	// Selection exposes the visual selection and cursor line.
	Selection SelectionProvider

	// Command registers user-invocable commands.
	Command CommandProvider

	// Keymap registers key bindings.
	Keymap KeymapProvider

	// Chat is the optional chat integration sink. May be nil.
	Chat ChatSink
}

// Option configures optional Context fields.
type Option func(*Context)

// WithChatSink attaches the optional chat integration collaborator.
func WithChatSink(sink ChatSink) Option {
	return func(c *Context) {
		c.Chat = sink
	}
}

// NewContext builds a Context from the required providers.
func NewContext(ui UIProvider, clipboard ClipboardProvider, selection SelectionProvider,
	command CommandProvider, keymap KeymapProvider, opts ...Option) *Context {
	c := &Context{
		UI:        ui,
		Clipboard: clipboard,
		Selection: selection,
		Command:   command,
		Keymap:    keymap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate reports the first missing required provider.
func (c *Context) Validate() error {
	switch {
	case c.UI == nil:
		return ErrNoUI
	case c.Clipboard == nil:
		return ErrNoClipboard
	case c.Selection == nil:
		return ErrNoSelection
	case c.Command == nil:
		return ErrNoCommands
	case c.Keymap == nil:
		return ErrNoKeymaps
	}
	return nil
}

// HasChat reports whether a chat sink was attached at composition time.
func (c *Context) HasChat() bool {
	return c.Chat != nil
}
