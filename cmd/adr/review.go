package main

import (
	"github.com/spf13/cobra"

	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/git"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review the currently staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
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
			return exitCode(a.announce(outcome))
		},
	}
}

func newRangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "range BASE HEAD",
		Short: "Review the diff between two refs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(a.logger)
			defer cancel()

			diff, err := git.DiffRange(ctx, a.repoRoot, args[0], args[1])
			if err != nil {
				a.logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			outcome := a.review(ctx, diff)
			if ctx.Err() != nil {
				return exitCode(domain.ExitInterrupted)
			}
			return exitCode(a.announce(outcome))
		},
	}
}
