// Package agent provides the reviewer backend adapters.
//
// Each adapter encapsulates one backend CLI's invocation protocol (argument
// list, input channel, envelope unwrapping) behind a uniform contract: a
// prompt goes in, a domain.ReviewerResult comes out. No failure mode escapes
// an adapter; everything from a missing binary to malformed output collapses
// to an unavailable result plus one diagnostic log line.
package agent

import (
	"context"
	"time"

	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

// InvokeOptions controls a single adapter invocation.
type InvokeOptions struct {
	// SkipPreflight disables the reachability probe. Always set when the
	// operator forces a single backend: an explicit choice implies they have
	// already confirmed availability, and the backend's own authentication
	// failure is sufficient signal.
	SkipPreflight bool
}

// Adapter is the uniform contract implemented by every reviewer backend.
type Adapter interface {
	// Name returns the backend's identity.
	Name() domain.Identity

	// Invoke runs one review. It never returns an error: every failure mode
	// downgrades to an unavailable result with a diagnostic.
	Invoke(ctx context.Context, prompt string, opts InvokeOptions) domain.ReviewerResult
}

// Settings carries per-backend configuration into an adapter. Constructed
// once from the resolved configuration and passed down, never read from
// process-wide state inside the adapters.
type Settings struct {
	// BinOverride is an explicit binary path; used verbatim when non-blank.
	BinOverride string
	// Model is the backend model/tag override; empty means the CLI default.
	Model string
	// Timeout bounds the subprocess wall clock.
	Timeout time.Duration
	// PreflightTimeout bounds the reachability probe.
	PreflightTimeout time.Duration
	// Logger receives diagnostics; nil disables logging.
	Logger *terminal.Logger
}

func (s Settings) logf(style terminal.Style, format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Logf(style, format, args...)
	}
}

func (s Settings) raw(label, body string) {
	if s.Logger != nil {
		s.Logger.Raw(label, body)
	}
}

// NewAdapter creates the adapter for a backend identity.
func NewAdapter(id domain.Identity, settings Settings) Adapter {
	switch id {
	case domain.BackendClaude:
		return NewClaudeAdapter(settings)
	case domain.BackendCodex:
		return NewCodexAdapter(settings)
	case domain.BackendGemini:
		return NewGeminiAdapter(settings)
	}
	return nil
}
