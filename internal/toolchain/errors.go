package toolchain

import "errors"

var (
	// ErrSearchToolUnavailable indicates the search binary was not found on PATH.
	ErrSearchToolUnavailable = errors.New("search tool not found in PATH")

	// ErrAnalyzeToolUnavailable indicates the analyze binary was not found on PATH.
	ErrAnalyzeToolUnavailable = errors.New("analyze tool not found in PATH")

	// ErrToolNotResolved indicates a request named no resolved binary.
	ErrToolNotResolved = errors.New("tool path not resolved")

	// ErrJobNotFound indicates the job ID is unknown to the runner.
	ErrJobNotFound = errors.New("job not found")
)
