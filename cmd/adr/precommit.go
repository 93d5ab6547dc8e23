package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/git"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

func newPreCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pre-commit",
		Short: "Review staged changes as a commit gate (for the pre-commit hook)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isCI() {
				// CI pipelines gate elsewhere; the hook must never block them.
				return nil
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			if a.gate.Locked() {
				fmt.Fprint(os.Stderr, a.gate.RefusalMessage())
				return exitCode(domain.ExitBlocked)
			}

			ctx, cancel := signalContext(a.logger)
			defer cancel()

			diff, err := git.StagedDiff(ctx, a.repoRoot)
			if err != nil {
				a.logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			outcome := a.review(ctx, diff)
			if ctx.Err() != nil {
				return exitCode(domain.ExitInterrupted)
			}

			if outcome.Decision.Pass {
				a.gate.RecordPass()
				a.logger.Logf(terminal.StyleSuccess, "Approved: %s", outcome.Decision.Reason)
				return nil
			}

			a.logger.Logf(terminal.StyleError, "Blocked: %s", outcome.Decision.Reason)
			a.printFindings(outcome)

			count, locked := a.gate.RecordFail()
			if locked {
				a.logger.Logf(terminal.StyleError,
					"%d consecutive failed reviews - commits are now locked", count)
				fmt.Fprint(os.Stderr, a.gate.RefusalMessage())
			} else {
				a.logger.Logf(terminal.StyleWarning,
					"failed review %d of %d before commits lock", count, a.gate.Threshold())
			}
			return exitCode(domain.ExitBlocked)
		},
	}
}

// isCI reports whether a truthy CI environment variable is set. Hooks run in
// CI checkouts too, and the gate must stay out of the pipeline's way there.
func isCI() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("CI")))
	switch v {
	case "", "0", "false", "no":
		return false
	}
	return true
}
