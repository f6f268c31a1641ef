// Package host defines the provider interfaces an embedding editor
// implements to back codeseek's workflow operations.
//
// The workflow never talks to an editor API directly; it receives a
// Context carrying these providers at composition time. The chat sink
// is the only optional collaborator, resolved once at setup rather
// than probed per call.
package host

// NotificationLevel represents the severity of a notification.
type NotificationLevel string

const (
	// NotificationInfo is an informational notification.
	NotificationInfo NotificationLevel = "info"
	// NotificationWarning is a warning notification.
	NotificationWarning NotificationLevel = "warning"
	// NotificationError is an error notification.
	NotificationError NotificationLevel = "error"
	// NotificationSuccess is a success notification.
	NotificationSuccess NotificationLevel = "success"
)

// UIProvider defines the interface for user-facing output and prompts.
type UIProvider interface {
	// Notify shows a notification to the user.
	Notify(message string, level NotificationLevel) error

	// Input prompts the user for text input.
	// Returns the input text and false if the prompt was cancelled.
	Input(prompt string, defaultValue string) (string, bool)
}

// ClipboardProvider writes to the host's unnamed clipboard register.
type ClipboardProvider interface {
	// SetClipboard replaces the clipboard contents with text.
	SetClipboard(text string) error
}

// SelectionProvider exposes the current visual selection and cursor line.
type SelectionProvider interface {
	// Selection returns the active selection text.
	// The second return is false when no selection is active.
	Selection() (string, bool)

	// CursorLine returns the text of the cursor's line and the cursor's
	// byte column within it (0-indexed).
	CursorLine() (line string, col int)
}

// ChatSink is the optional chat integration collaborator.
// Deliver hands analysis text to the chat surface and reports whether
// the sink accepted it; on false the caller falls back to the clipboard.
type ChatSink interface {
	Deliver(text string) bool
}
