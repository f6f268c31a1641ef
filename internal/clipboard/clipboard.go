// Package clipboard provides clipboard writers for hosts that do not
// supply their own.
//
// An embedding editor normally routes clipboard writes through its own
// register machinery. The standalone CLI has no such host, so it shells
// out to whichever platform utility is installed.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/codeseek/internal/host"
)

// ErrNoClipboard indicates no clipboard utility is installed.
var ErrNoClipboard = errors.New("no clipboard utility found")

// candidate is one known clipboard utility.
type candidate struct {
	name string
	args []string
}

// candidates in preference order: macOS, Wayland, then X11.
var candidates = []candidate{
	{name: "pbcopy"},
	{name: "wl-copy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--input"}},
}

// System writes to the system clipboard through a host utility.
type System struct {
	path string
	args []string
}

// NewSystem resolves the first available clipboard utility.
func NewSystem() (*System, error) {
	for _, c := range candidates {
		path, err := exec.LookPath(c.name)
		if err != nil {
			continue
		}
		return &System{path: path, args: c.args}, nil
	}
	return nil, ErrNoClipboard
}

// SetClipboard pipes text into the resolved utility.
func (s *System) SetClipboard(text string) error {
	cmd := exec.Command(s.path, s.args...)
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s", filepath.Base(s.path), msg)
		}
		return fmt.Errorf("%s: %w", filepath.Base(s.path), err)
	}
	return nil
}

// Utility returns the resolved utility path.
func (s *System) Utility() string {
	return s.path
}

// Memory is an in-process clipboard for tests and headless hosts.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory creates an empty in-process clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// SetClipboard stores text.
func (m *Memory) SetClipboard(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Text returns the stored text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Ensure both writers satisfy the host interface.
var (
	_ host.ClipboardProvider = (*System)(nil)
	_ host.ClipboardProvider = (*Memory)(nil)
)
