package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/git"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

const hookScript = `#!/bin/sh
# Installed by adr. Reviews staged changes before each commit.
exec adr pre-commit
`

func newInstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the pre-commit hook into the current repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !terminal.IsStderrTTY() {
				terminal.DisableColors()
			}
			logger := terminal.NewLogger(verbose)

			repoRoot, err := git.Root()
			if err != nil {
				logger.Logf(terminal.StyleError, "%v", err)
				return exitCode(domain.ExitError)
			}

			hookPath := filepath.Join(repoRoot, ".git", "hooks", "pre-commit")
			if _, err := os.Stat(hookPath); err == nil && !force {
				logger.Logf(terminal.StyleError,
					"%s already exists, pass --force to overwrite", hookPath)
				return exitCode(domain.ExitError)
			}

			if err := os.MkdirAll(filepath.Dir(hookPath), 0755); err != nil {
				logger.Logf(terminal.StyleError, "failed to create hooks directory: %v", err)
				return exitCode(domain.ExitError)
			}
			if err := os.WriteFile(hookPath, []byte(hookScript), 0755); err != nil {
				logger.Logf(terminal.StyleError, "failed to write hook: %v", err)
				return exitCode(domain.ExitError)
			}

			logger.Logf(terminal.StyleSuccess, "Installed pre-commit hook at %s", hookPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing pre-commit hook")
	return cmd
}
