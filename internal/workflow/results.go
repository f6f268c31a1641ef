package workflow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/codeseek/internal/project"
	"github.com/dshills/codeseek/internal/toolchain"
)

const (
	// previewLimit caps the lines quoted in an analysis notification.
	previewLimit = 5

	// listedFilesLimit caps the files named in a search notification.
	listedFilesLimit = 8
)

// filePattern matches path-shaped tokens with a letter-led extension,
// such as "src/auth.go" inside "src/auth.go:12: handleLogin". Version
// strings like "1.2.3" do not match.
var filePattern = regexp.MustCompile(`[\w./-]+\.[A-Za-z]\w*`)

// extractFiles returns the distinct file tokens in output, ordered by
// first occurrence.
func extractFiles(output string) []string {
	matches := filePattern.FindAllString(output, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		files = append(files, m)
	}
	return files
}

// searchNotice builds the notification for a search with results.
func searchNotice(output string) string {
	files := extractFiles(output)
	if len(files) == 0 {
		return "Results copied to clipboard."
	}

	listed := files
	var more int
	if len(listed) > listedFilesLimit {
		more = len(listed) - listedFilesLimit
		listed = listed[:listedFilesLimit]
	}

	notice := fmt.Sprintf("Results copied to clipboard. Files: %s", strings.Join(listed, ", "))
	if more > 0 {
		notice += fmt.Sprintf(" and %d more", more)
	}
	return notice
}

// analysisNotice builds the notification for an analysis routed to the
// clipboard, quoting the first few non-blank lines.
func analysisNotice(output string) string {
	var b strings.Builder
	b.WriteString("Analysis copied to clipboard:")
	for _, line := range previewLines(output, previewLimit) {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// previewLines returns the first n non-blank lines of text.
func previewLines(text string, n int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

// missingToolOutput reports whether stderr carries a shell diagnostic
// for a nonexistent command. Legacy tool wrappers exit this way instead
// of failing fast.
func missingToolOutput(stderr string) bool {
	return strings.Contains(stderr, "command not found") ||
		strings.Contains(stderr, "No such file")
}

// readinessMessage renders the warning for a project that cannot be
// searched yet.
func readinessMessage(state project.State) string {
	switch state {
	case project.StateUninitialized:
		return fmt.Sprintf("Project not initialized. Run '%s' in the project root first.", state.Remediation())
	case project.StateUnindexed:
		return fmt.Sprintf("Project not indexed. Run '%s' to build the index first.", state.Remediation())
	default:
		return ""
	}
}

// failureDetail extracts the most useful diagnostic from a failed job.
func failureDetail(job *toolchain.Job) string {
	if detail := strings.TrimSpace(job.Stderr()); detail != "" {
		return detail
	}
	if job.Err != nil {
		return job.Err.Error()
	}
	return fmt.Sprintf("exit code %d", job.ExitCode)
}
