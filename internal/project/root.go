package project

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
)

// ResolveRoot returns the project root for dir.
//
// When dir sits inside a git worktree the worktree toplevel wins, so
// commands issued from a subdirectory still query the whole project.
// Outside version control, or when git is unavailable, dir itself is
// the root. An empty dir means the current working directory.
func ResolveRoot(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		dir = wd
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return dir
	}

	root := strings.TrimSpace(stdout.String())
	if root == "" {
		return dir
	}
	return root
}
