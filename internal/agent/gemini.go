package agent

import (
	"context"
	"strings"

	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

// Compile-time interface check
var _ Adapter = (*GeminiAdapter)(nil)

// DefaultGeminiModel is used when no model override is configured.
const DefaultGeminiModel = "gemini-2.5-pro"

// GeminiAdapter drives the gemini CLI (stdout style backend).
type GeminiAdapter struct {
	settings Settings
}

// NewGeminiAdapter creates a new GeminiAdapter.
func NewGeminiAdapter(settings Settings) *GeminiAdapter {
	return &GeminiAdapter{settings: settings}
}

// Name returns the adapter's backend identity.
func (a *GeminiAdapter) Name() domain.Identity {
	return domain.BackendGemini
}

// Invoke runs one review through the gemini CLI.
//
// The prompt is piped to stdin in single-shot prompt mode with an explicit
// model selection. Success requires exit code 0 and non-empty stdout, which
// is handed to the parser unchanged.
func (a *GeminiAdapter) Invoke(ctx context.Context, prompt string, opts InvokeOptions) domain.ReviewerResult {
	path, ok := Resolve(domain.BackendGemini, a.settings.BinOverride, []string{"gemini"})
	if !ok {
		return a.unavailable("gemini CLI not found")
	}

	if !opts.SkipPreflight && !preflightPassed(ctx, domain.BackendGemini, a.settings.PreflightTimeout) {
		return a.unavailable("gemini endpoints unreachable (set " + TokenEnvVar(domain.BackendGemini) + " to skip the check)")
	}

	model := a.settings.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	args := []string{"-m", model, "-p"}

	out, err := runCommand(ctx, a.settings.Timeout, command{Path: path, Args: args, Stdin: prompt})
	if err != nil {
		return a.unavailable(err.Error())
	}
	a.settings.raw("gemini stdout", out.Stdout)
	if out.Stderr != "" {
		a.settings.raw("gemini stderr", out.Stderr)
	}
	if out.TimedOut {
		return a.unavailable("timed out after " + a.settings.Timeout.String())
	}
	if out.ExitCode != 0 {
		return a.unavailable(exitDetail("gemini", out))
	}
	if strings.TrimSpace(out.Stdout) == "" {
		return a.unavailable("gemini produced no output")
	}

	verdict, err := ParseVerdict(out.Stdout)
	if err != nil {
		return a.unavailable(err.Error())
	}
	return domain.Available(domain.BackendGemini, verdict, nil)
}

func (a *GeminiAdapter) unavailable(detail string) domain.ReviewerResult {
	a.settings.logf(terminal.StyleWarning, "gemini unavailable: %s", detail)
	return domain.Unavailable(domain.BackendGemini, detail)
}
