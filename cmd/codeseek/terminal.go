package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dshills/codeseek/internal/clipboard"
	"github.com/dshills/codeseek/internal/host"
)

// newTerminalContext assembles the host providers for one-shot terminal
// use. There is no command palette or keymap table to register into;
// those providers accept and drop registrations.
func newTerminalContext() *host.Context {
	return host.NewContext(
		newTerminalUI(),
		newTerminalClipboard(),
		noSelection{},
		dropCommands{},
		dropKeymaps{},
	)
}

// terminalUI prints notifications to stderr with a level tag and prompts
// on stdin when it is a terminal.
type terminalUI struct {
	in *bufio.Reader
}

func newTerminalUI() *terminalUI {
	return &terminalUI{in: bufio.NewReader(os.Stdin)}
}

func (u *terminalUI) Notify(message string, level host.NotificationLevel) error {
	_, err := fmt.Fprintf(os.Stderr, "[%s] %s\n", level, message)
	return err
}

func (u *terminalUI) Input(prompt, defaultValue string) (string, bool) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", false
	}

	fmt.Fprint(os.Stderr, prompt)
	line, err := u.in.ReadString('\n')
	if err != nil {
		return "", false
	}

	line = strings.TrimSpace(line)
	if line == "" && defaultValue != "" {
		return defaultValue, true
	}
	return line, true
}

// terminalClipboard prints results to stdout so they are pipeable, and
// mirrors them to the system clipboard when a utility is installed.
type terminalClipboard struct {
	sys host.ClipboardProvider
}

func newTerminalClipboard() *terminalClipboard {
	sys, err := clipboard.NewSystem()
	if err != nil {
		return &terminalClipboard{}
	}
	return &terminalClipboard{sys: sys}
}

func (c *terminalClipboard) SetClipboard(text string) error {
	if _, err := fmt.Println(text); err != nil {
		return err
	}
	if c.sys != nil {
		// stdout already carried the results; the mirror is best effort.
		_ = c.sys.SetClipboard(text)
	}
	return nil
}

// noSelection reports no visual selection; terminal queries come from
// arguments or the prompt.
type noSelection struct{}

func (noSelection) Selection() (string, bool) { return "", false }
func (noSelection) CursorLine() (string, int) { return "", 0 }

type dropCommands struct{}

func (dropCommands) Register(host.Command) error { return nil }
func (dropCommands) Unregister(string) error     { return nil }

type dropKeymaps struct{}

func (dropKeymaps) Bind(host.Binding) error                  { return nil }
func (dropKeymaps) Unbind(modes []string, keys string) error { return nil }
