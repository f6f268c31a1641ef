package toolchain

import (
	"fmt"
	"os/exec"
)

// Tools holds the resolved locations of the external binaries.
type Tools struct {
	// Search is the absolute path of the search binary.
	Search string

	// Analyze is the absolute path of the analyze binary.
	// Empty when the binary could not be resolved.
	Analyze string

	// AnalyzeErr records why the analyze binary is unavailable.
	AnalyzeErr error
}

// ResolveTools looks up the configured binaries on PATH.
//
// The search binary is required; resolution fails with
// ErrSearchToolUnavailable when it is missing. The analyze binary is
// optional: a failed lookup is recorded on the returned Tools and
// analysis degrades to plain search.
func ResolveTools(searchName, analyzeName string) (*Tools, error) {
	searchPath, err := exec.LookPath(searchName)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", searchName, ErrSearchToolUnavailable)
	}

	tools := &Tools{Search: searchPath}

	analyzePath, err := exec.LookPath(analyzeName)
	if err != nil {
		tools.AnalyzeErr = fmt.Errorf("%q: %w", analyzeName, ErrAnalyzeToolUnavailable)
		return tools, nil
	}

	tools.Analyze = analyzePath
	return tools, nil
}

// HasAnalyze reports whether the analyze binary was resolved.
func (t *Tools) HasAnalyze() bool {
	return t.Analyze != ""
}
