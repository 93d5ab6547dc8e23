package domain

// TokenUsage holds optional token accounting reported by a backend envelope.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// ReviewerResult is the outcome of one adapter invocation. It is created
// fresh per invocation, never mutated after construction, and consumed once
// by the aggregator. A nil Verdict means the backend was unavailable.
type ReviewerResult struct {
	Backend Identity
	Verdict *ReviewVerdict
	Usage   *TokenUsage
	// Detail carries the operator-facing diagnostic for unavailable results
	// (binary missing, preflight failed, timeout, bad output, ...).
	Detail string
}

// Available constructs a result for a backend that produced a valid verdict.
func Available(backend Identity, verdict *ReviewVerdict, usage *TokenUsage) ReviewerResult {
	return ReviewerResult{Backend: backend, Verdict: verdict, Usage: usage}
}

// Unavailable constructs a result for a backend that could not produce a verdict.
func Unavailable(backend Identity, detail string) ReviewerResult {
	return ReviewerResult{Backend: backend, Detail: detail}
}

// IsAvailable reports whether the invocation produced a verdict.
func (r ReviewerResult) IsAvailable() bool {
	return r.Verdict != nil
}
