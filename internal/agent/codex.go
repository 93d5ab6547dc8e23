package agent

import (
	"context"
	"os"

	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

// Compile-time interface check
var _ Adapter = (*CodexAdapter)(nil)

// verdictSchemaJSON constrains codex's last message to the verdict shape.
const verdictSchemaJSON = `{
  "type": "object",
  "properties": {
    "status": {"type": "string", "enum": ["pass", "fail"]},
    "summary": {"type": "string"},
    "findings": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "severity": {"type": "string"},
          "title": {"type": "string"},
          "details": {"type": "string"},
          "file": {"type": "string"},
          "line": {"type": "integer"}
        },
        "required": ["severity", "title", "details"]
      }
    }
  },
  "required": ["status", "summary", "findings"]
}`

// CodexAdapter drives the codex CLI (file-result style backend).
type CodexAdapter struct {
	settings Settings
}

// NewCodexAdapter creates a new CodexAdapter.
func NewCodexAdapter(settings Settings) *CodexAdapter {
	return &CodexAdapter{settings: settings}
}

// Name returns the adapter's backend identity.
func (a *CodexAdapter) Name() domain.Identity {
	return domain.BackendCodex
}

// Invoke runs one review through the codex CLI.
//
// The prompt is piped to stdin. Codex runs sandboxed read-only and is given a
// schema file shaping its answer plus a result-file path for its last
// message. Success requires both exit code 0 and the result file existing;
// the result file's contents are what the parser sees.
func (a *CodexAdapter) Invoke(ctx context.Context, prompt string, opts InvokeOptions) domain.ReviewerResult {
	path, ok := Resolve(domain.BackendCodex, a.settings.BinOverride, []string{"codex"})
	if !ok {
		return a.unavailable("codex CLI not found")
	}

	if !opts.SkipPreflight && !preflightPassed(ctx, domain.BackendCodex, a.settings.PreflightTimeout) {
		return a.unavailable("openai endpoints unreachable (set " + TokenEnvVar(domain.BackendCodex) + " to skip the check)")
	}

	schemaPath, err := writeTempFile("schema", []byte(verdictSchemaJSON))
	if err != nil {
		return a.unavailable(err.Error())
	}
	defer cleanupTempFile(schemaPath)

	resultPath := tempFilePath("result")
	defer cleanupTempFile(resultPath)

	args := []string{
		"exec",
		"--sandbox", "read-only",
		"--output-schema", schemaPath,
		"--output-last-message", resultPath,
	}
	if a.settings.Model != "" {
		args = append(args, "-m", a.settings.Model)
	}
	args = append(args, "-")

	out, err := runCommand(ctx, a.settings.Timeout, command{Path: path, Args: args, Stdin: prompt})
	if err != nil {
		return a.unavailable(err.Error())
	}
	a.settings.raw("codex stdout", out.Stdout)
	if out.Stderr != "" {
		a.settings.raw("codex stderr", out.Stderr)
	}
	if out.TimedOut {
		return a.unavailable("timed out after " + a.settings.Timeout.String())
	}
	if out.ExitCode != 0 {
		return a.unavailable(exitDetail("codex", out))
	}

	payload, err := os.ReadFile(resultPath)
	if err != nil {
		return a.unavailable("codex did not write a result file")
	}
	a.settings.raw("codex result file", string(payload))

	verdict, err := ParseVerdict(string(payload))
	if err != nil {
		return a.unavailable(err.Error())
	}
	return domain.Available(domain.BackendCodex, verdict, nil)
}

func (a *CodexAdapter) unavailable(detail string) domain.ReviewerResult {
	a.settings.logf(terminal.StyleWarning, "codex unavailable: %s", detail)
	return domain.Unavailable(domain.BackendCodex, detail)
}
