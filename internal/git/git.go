// Package git provides the handful of git operations the review gate needs.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Root returns the root directory of the current git repository.
func Root() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// StagedDiff returns the diff of the index against HEAD: the change a commit
// would introduce. An empty string means nothing is staged.
func StagedDiff(ctx context.Context, repoRoot string) (string, error) {
	return run(ctx, repoRoot, "diff", "--cached")
}

// DiffRange returns the diff between two refs.
func DiffRange(ctx context.Context, repoRoot, base, head string) (string, error) {
	return run(ctx, repoRoot, "diff", base, head)
}

// TrackedFiles returns every path tracked in the repository, relative to the
// repo root.
func TrackedFiles(ctx context.Context, repoRoot string) ([]string, error) {
	out, err := run(ctx, repoRoot, "ls-files")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

func run(ctx context.Context, repoRoot string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if stderr := strings.TrimSpace(string(exitErr.Stderr)); stderr != "" {
				return "", fmt.Errorf("git %s failed (%s): %w", args[0], stderr, err)
			}
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return string(out), nil
}
