package runner

import (
	"fmt"
	"strings"

	"github.com/spylogsster/ai-diff-review/internal/domain"
)

// Decision is the aggregated outcome of a review run.
type Decision struct {
	Pass   bool
	Reason string
}

// Aggregate reduces any number of reviewer results to a single decision.
// Rules, in priority order:
//  1. no result delivered a verdict → fail
//  2. any delivered verdict has status fail → fail
//  3. any delivered verdict carries findings, even with status pass → fail
//  4. otherwise → pass
func Aggregate(results []domain.ReviewerResult) Decision {
	var available []domain.ReviewerResult
	for _, r := range results {
		if r.IsAvailable() {
			available = append(available, r)
		}
	}

	if len(available) == 0 {
		return Decision{Pass: false, Reason: "no reviewer was available to deliver a verdict"}
	}

	var failed []string
	for _, r := range available {
		if r.Verdict.Status == domain.StatusFail {
			failed = append(failed, string(r.Backend))
		}
	}
	if len(failed) > 0 {
		return Decision{Pass: false, Reason: fmt.Sprintf("rejected by %s", strings.Join(failed, ", "))}
	}

	var withFindings []string
	for _, r := range available {
		if !r.Verdict.Clean() {
			withFindings = append(withFindings, fmt.Sprintf("%s (%d)", r.Backend, len(r.Verdict.Findings)))
		}
	}
	if len(withFindings) > 0 {
		return Decision{Pass: false, Reason: fmt.Sprintf("findings reported by %s", strings.Join(withFindings, ", "))}
	}

	var approvers []string
	for _, r := range available {
		approvers = append(approvers, string(r.Backend))
	}
	return Decision{Pass: true, Reason: fmt.Sprintf("approved by %s", strings.Join(approvers, ", "))}
}
