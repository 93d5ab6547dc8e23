package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spylogsster/ai-diff-review/internal/config"
	"github.com/spylogsster/ai-diff-review/internal/control"
	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/gate"
	"github.com/spylogsster/ai-diff-review/internal/git"
	"github.com/spylogsster/ai-diff-review/internal/policy"
	"github.com/spylogsster/ai-diff-review/internal/runner"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

// app wires the resolved config, control state and runner for one invocation.
type app struct {
	logger   *terminal.Logger
	cfg      config.ResolvedConfig
	repoRoot string
	store    *control.Store
	gate     *gate.Gate
	runner   *runner.Runner
	force    domain.Identity
}

// newApp resolves configuration and builds the run wiring. It is shared by
// every diff-reviewing subcommand.
func newApp(cmd *cobra.Command) (*app, error) {
	if !terminal.IsStderrTTY() {
		terminal.DisableColors()
	}
	logger := terminal.NewLogger(verbose)

	force, err := forcedBackend()
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return nil, exitCode(domain.ExitError)
	}

	repoRoot, err := git.Root()
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return nil, exitCode(domain.ExitError)
	}

	var cfg *config.Config
	if !noConfig {
		result, err := config.LoadFromDirWithWarnings(repoRoot)
		if err != nil {
			logger.Logf(terminal.StyleError, "Config error: %v", err)
			return nil, exitCode(domain.ExitError)
		}
		cfg = result.Config
		for _, warning := range result.Warnings {
			logger.Logf(terminal.StyleWarning, "Warning: %s", warning)
		}
	}

	flagState := config.FlagState{
		TimeoutSet:       cmd.Flags().Changed("timeout"),
		LockThresholdSet: cmd.Flags().Changed("lock-threshold"),
	}
	flagValues := config.ResolvedConfig{
		Timeout:       timeout,
		LockThreshold: lockThreshold,
	}
	resolved := config.Resolve(cfg, config.LoadEnvState(), flagState, flagValues)

	store := control.NewStore(control.Dir(repoRoot))
	return &app{
		logger:   logger,
		cfg:      resolved,
		repoRoot: repoRoot,
		store:    store,
		gate:     gate.New(store, resolved.LockThreshold, logger),
		runner:   runner.New(resolved, store, logger),
		force:    force,
	}, nil
}

// review assembles the prompt for a diff and runs the backends over it.
func (a *app) review(ctx context.Context, diff string) runner.Outcome {
	var docs []policy.Doc
	if strings.TrimSpace(diff) != "" {
		tracked, err := git.TrackedFiles(ctx, a.repoRoot)
		if err != nil {
			a.logger.Logf(terminal.StyleWarning, "%v", err)
		}
		docs = policy.LoadContext(a.repoRoot, tracked)
	}

	prompt := policy.BuildPrompt(policy.HeaderLines(a.cfg.PromptHeader), docs, diff)
	a.logger.Raw("prompt", prompt)

	return a.runner.Review(ctx, prompt, diff, a.force)
}

// announce prints the decision for commands that do not touch the gate.
func (a *app) announce(outcome runner.Outcome) domain.ExitCode {
	if outcome.Decision.Pass {
		a.logger.Logf(terminal.StyleSuccess, "Approved: %s", outcome.Decision.Reason)
		return domain.ExitApproved
	}
	a.logger.Logf(terminal.StyleError, "Blocked: %s", outcome.Decision.Reason)
	a.printFindings(outcome)
	return domain.ExitBlocked
}

// printFindings echoes each delivered verdict's summary and findings.
func (a *app) printFindings(outcome runner.Outcome) {
	for _, result := range outcome.Results {
		if !result.IsAvailable() {
			continue
		}
		v := result.Verdict
		if v.Summary != "" {
			a.logger.Logf(terminal.StyleInfo, "%s: %s", result.Backend, v.Summary)
		}
		for _, f := range v.Findings {
			loc := ""
			if f.File != "" {
				loc = " (" + f.File
				if f.Line > 0 {
					loc += ":" + strconv.Itoa(f.Line)
				}
				loc += ")"
			}
			a.logger.Logf(terminal.StyleWarning, "  [%s] %s%s", f.Severity, f.Title, loc)
			if f.Details != "" {
				a.logger.Logf(terminal.StyleDim, "    %s", f.Details)
			}
		}
	}
}
