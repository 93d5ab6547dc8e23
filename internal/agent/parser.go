package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spylogsster/ai-diff-review/internal/domain"
)

// ParseError indicates the backend's output could not be turned into a valid
// verdict. Adapters catch it at their boundary and downgrade to unavailable.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "invalid verdict: " + e.Reason
}

// errNotJSON marks a structural failure: the text was not a JSON object at
// all. It triggers the brace-slice recovery attempt; validation failures on
// well-formed JSON do not.
type errNotJSON struct {
	cause error
}

func (e *errNotJSON) Error() string {
	return e.cause.Error()
}

// ParseVerdict turns raw backend text into a validated verdict.
//
// The text is first stripped of a single surrounding markdown code fence and
// parsed directly; a well-formed document is accepted immediately even when
// the word "status" appears inside a summary or details string. Only if that
// fails structurally is the substring from the first '{' to the last '}'
// retried, recovering a verdict embedded in surrounding commentary.
//
// Pure and side-effect-free.
func ParseVerdict(raw string) (*domain.ReviewVerdict, error) {
	cleaned := StripMarkdownCodeFence(raw)
	if cleaned == "" {
		return nil, &ParseError{Reason: "empty output"}
	}

	verdict, err := decodeVerdict(cleaned)
	if err == nil {
		return verdict, nil
	}
	var structural *errNotJSON
	if !errors.As(err, &structural) {
		return nil, err
	}

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first < 0 || last <= first {
		return nil, &ParseError{Reason: "no JSON object in output"}
	}
	verdict, err = decodeVerdict(cleaned[first : last+1])
	if err != nil {
		if errors.As(err, &structural) {
			return nil, &ParseError{Reason: "malformed JSON in output"}
		}
		return nil, err
	}
	return verdict, nil
}

// verdictDoc is the raw decode target; findings stay raw so a non-array can
// be distinguished from an empty one.
type verdictDoc struct {
	Status   *string         `json:"status"`
	Summary  string          `json:"summary"`
	Findings json.RawMessage `json:"findings"`
}

func decodeVerdict(text string) (*domain.ReviewVerdict, error) {
	var doc verdictDoc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &errNotJSON{cause: err}
	}

	if doc.Status == nil {
		return nil, &ParseError{Reason: "missing status"}
	}
	status := domain.VerdictStatus(*doc.Status)
	if status != domain.StatusPass && status != domain.StatusFail {
		return nil, &ParseError{Reason: fmt.Sprintf("status must be %q or %q, got %q", domain.StatusPass, domain.StatusFail, *doc.Status)}
	}

	findings := []domain.Finding{}
	if len(doc.Findings) > 0 && string(doc.Findings) != "null" {
		if err := json.Unmarshal(doc.Findings, &findings); err != nil {
			return nil, &ParseError{Reason: "findings is not a sequence"}
		}
	}
	for _, f := range findings {
		if f.Line < 0 {
			return nil, &ParseError{Reason: fmt.Sprintf("finding line must be positive, got %d", f.Line)}
		}
	}

	return &domain.ReviewVerdict{
		Status:   status,
		Summary:  doc.Summary,
		Findings: findings,
	}, nil
}

// StripMarkdownCodeFence removes a single surrounding ``` fence, with or
// without a language tag, and trims whitespace. Text without a fence is
// returned trimmed.
func StripMarkdownCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	rest := trimmed[3:]
	// Skip the language tag: everything up to the first newline, or up to the
	// payload start for single-line fences.
	if idx := strings.IndexAny(rest, "\n{["); idx >= 0 {
		if rest[idx] == '\n' {
			rest = rest[idx+1:]
		} else {
			rest = rest[idx:]
		}
	} else {
		rest = ""
	}

	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(rest)
}
