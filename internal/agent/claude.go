package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

// Compile-time interface check
var _ Adapter = (*ClaudeAdapter)(nil)

// claudeEnvelope is the top-level JSON the claude CLI emits with
// --output-format json. The actual verdict text lives in the result field.
type claudeEnvelope struct {
	Result string `json:"result"`
	Usage  *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ClaudeAdapter drives the claude CLI (JSON-envelope style backend).
type ClaudeAdapter struct {
	settings Settings
}

// NewClaudeAdapter creates a new ClaudeAdapter.
func NewClaudeAdapter(settings Settings) *ClaudeAdapter {
	return &ClaudeAdapter{settings: settings}
}

// Name returns the adapter's backend identity.
func (a *ClaudeAdapter) Name() domain.Identity {
	return domain.BackendClaude
}

// Invoke runs one review through the claude CLI.
//
// The prompt is piped to stdin; claude runs single-shot with JSON output, no
// session persistence, a bounded number of agentic turns, and an empty
// allowed-tools list so the reviewer cannot take autonomous actions.
func (a *ClaudeAdapter) Invoke(ctx context.Context, prompt string, opts InvokeOptions) domain.ReviewerResult {
	path, ok := Resolve(domain.BackendClaude, a.settings.BinOverride, []string{"claude"})
	if !ok {
		return a.unavailable("claude CLI not found")
	}

	if !opts.SkipPreflight && !preflightPassed(ctx, domain.BackendClaude, a.settings.PreflightTimeout) {
		return a.unavailable("anthropic endpoints unreachable (set " + TokenEnvVar(domain.BackendClaude) + " to skip the check)")
	}

	args := []string{
		"-p",
		"--output-format", "json",
		"--no-session-persistence",
		"--max-turns", "3",
		"--allowedTools", "",
	}
	if a.settings.Model != "" {
		args = append(args, "--model", a.settings.Model)
	}

	out, err := runCommand(ctx, a.settings.Timeout, command{Path: path, Args: args, Stdin: prompt})
	if err != nil {
		return a.unavailable(err.Error())
	}
	a.settings.raw("claude stdout", out.Stdout)
	if out.Stderr != "" {
		a.settings.raw("claude stderr", out.Stderr)
	}
	if out.TimedOut {
		return a.unavailable("timed out after " + a.settings.Timeout.String())
	}
	if out.ExitCode != 0 {
		return a.unavailable(exitDetail("claude", out))
	}
	if strings.TrimSpace(out.Stdout) == "" {
		return a.unavailable("claude produced no output")
	}

	payload, usage := unwrapClaudeEnvelope(out.Stdout)
	verdict, err := ParseVerdict(payload)
	if err != nil {
		return a.unavailable(err.Error())
	}
	return domain.Available(domain.BackendClaude, verdict, usage)
}

func (a *ClaudeAdapter) unavailable(detail string) domain.ReviewerResult {
	a.settings.logf(terminal.StyleWarning, "claude unavailable: %s", detail)
	return domain.Unavailable(domain.BackendClaude, detail)
}

// unwrapClaudeEnvelope extracts the payload text from claude's JSON envelope.
// If the top-level parse fails or carries no result field, the raw text is
// returned unchanged and handed to the verdict parser as-is.
func unwrapClaudeEnvelope(raw string) (string, *domain.TokenUsage) {
	var envelope claudeEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil || envelope.Result == "" {
		return raw, nil
	}
	var usage *domain.TokenUsage
	if envelope.Usage != nil {
		usage = &domain.TokenUsage{
			Input:  envelope.Usage.InputTokens,
			Output: envelope.Usage.OutputTokens,
		}
	}
	return envelope.Result, usage
}
