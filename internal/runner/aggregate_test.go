package runner

import (
	"strings"
	"testing"

	"github.com/spylogsster/ai-diff-review/internal/domain"
)

func passResult(id domain.Identity) domain.ReviewerResult {
	return domain.Available(id, &domain.ReviewVerdict{Status: domain.StatusPass, Summary: "looks good"}, nil)
}

func failResult(id domain.Identity) domain.ReviewerResult {
	return domain.Available(id, &domain.ReviewVerdict{
		Status:   domain.StatusFail,
		Summary:  "broken error handling",
		Findings: []domain.Finding{{Severity: "high", Title: "swallowed error"}},
	}, nil)
}

func passWithFindings(id domain.Identity) domain.ReviewerResult {
	return domain.Available(id, &domain.ReviewVerdict{
		Status:   domain.StatusPass,
		Summary:  "mostly fine",
		Findings: []domain.Finding{{Severity: "low", Title: "typo in comment"}},
	}, nil)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		results    []domain.ReviewerResult
		wantPass   bool
		wantReason string
	}{
		{
			name:       "no results",
			results:    nil,
			wantPass:   false,
			wantReason: "no reviewer was available",
		},
		{
			name: "all unavailable",
			results: []domain.ReviewerResult{
				domain.Unavailable(domain.BackendClaude, "binary not found"),
				domain.Unavailable(domain.BackendCodex, "timed out"),
			},
			wantPass:   false,
			wantReason: "no reviewer was available",
		},
		{
			name:       "single pass",
			results:    []domain.ReviewerResult{passResult(domain.BackendClaude)},
			wantPass:   true,
			wantReason: "approved by claude",
		},
		{
			name: "unavailable then pass",
			results: []domain.ReviewerResult{
				domain.Unavailable(domain.BackendClaude, "no binary"),
				passResult(domain.BackendCodex),
			},
			wantPass:   true,
			wantReason: "approved by codex",
		},
		{
			name:       "single fail",
			results:    []domain.ReviewerResult{failResult(domain.BackendGemini)},
			wantPass:   false,
			wantReason: "rejected by gemini",
		},
		{
			name: "fail beats pass",
			results: []domain.ReviewerResult{
				passResult(domain.BackendClaude),
				failResult(domain.BackendCodex),
			},
			wantPass:   false,
			wantReason: "rejected by codex",
		},
		{
			name:       "pass with findings still blocks",
			results:    []domain.ReviewerResult{passWithFindings(domain.BackendClaude)},
			wantPass:   false,
			wantReason: "findings reported by claude (1)",
		},
		{
			name: "multiple approvers named",
			results: []domain.ReviewerResult{
				passResult(domain.BackendClaude),
				passResult(domain.BackendGemini),
			},
			wantPass:   true,
			wantReason: "approved by claude, gemini",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.results)
			if got.Pass != tt.wantPass {
				t.Errorf("Pass = %v, want %v (reason %q)", got.Pass, tt.wantPass, got.Reason)
			}
			if !strings.Contains(got.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to contain %q", got.Reason, tt.wantReason)
			}
		})
	}
}
