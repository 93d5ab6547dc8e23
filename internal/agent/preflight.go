package agent

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spylogsster/ai-diff-review/internal/domain"
)

// tokenEnvVars maps each backend to the API-token variable whose presence
// makes a network preflight unnecessary. The token is trusted without
// validation: if it is wrong, the backend's own authentication fails loudly
// at invocation time. This keeps headless environments from blocking on
// reachability checks.
var tokenEnvVars = map[domain.Identity]string{
	domain.BackendClaude: "ANTHROPIC_API_KEY",
	domain.BackendCodex:  "OPENAI_API_KEY",
	domain.BackendGemini: "GEMINI_API_KEY",
}

// preflightEndpoints lists the known endpoints probed per backend.
var preflightEndpoints = map[domain.Identity][]string{
	domain.BackendClaude: {"https://api.anthropic.com/"},
	domain.BackendCodex:  {"https://api.openai.com/"},
	domain.BackendGemini: {"https://generativelanguage.googleapis.com/"},
}

// TokenEnvVar returns the API-token environment variable for a backend.
func TokenEnvVar(id domain.Identity) string {
	return tokenEnvVars[id]
}

// preflightPassed reports whether the backend should be invoked: either an
// API token is configured, or at least one known endpoint answered within
// the preflight timeout.
func preflightPassed(ctx context.Context, id domain.Identity, timeout time.Duration) bool {
	if os.Getenv(tokenEnvVars[id]) != "" {
		return true
	}
	return reachable(ctx, preflightEndpoints[id], timeout)
}

// reachable probes the given URLs and returns true on the first response.
// Any HTTP status counts as reachable; the probe only establishes that the
// endpoint answers, not that the caller is authorized.
func reachable(ctx context.Context, urls []string, timeout time.Duration) bool {
	client := &http.Client{Timeout: timeout}
	for _, url := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		_ = resp.Body.Close()
		return true
	}
	return false
}
