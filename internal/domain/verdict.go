// Package domain provides core types for the review gate.
package domain

// VerdictStatus is the overall outcome reported by a single reviewer.
type VerdictStatus string

const (
	// StatusPass indicates the reviewer approved the change.
	StatusPass VerdictStatus = "pass"
	// StatusFail indicates the reviewer blocked the change.
	StatusFail VerdictStatus = "fail"
)

// Finding represents a single issue reported within a verdict.
type Finding struct {
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Details  string `json:"details"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// ReviewVerdict is the structured result produced by one backend for one review.
// Status is always exactly StatusPass or StatusFail; the parser rejects
// anything else rather than coercing it.
type ReviewVerdict struct {
	Status   VerdictStatus `json:"status"`
	Summary  string        `json:"summary"`
	Findings []Finding     `json:"findings"`
}

// Clean returns true if the verdict passed with zero findings.
// A pass with findings still blocks the commit: findings are unresolved
// observations the reviewer chose not to escalate, and the gate requires
// zero of them.
func (v *ReviewVerdict) Clean() bool {
	return v.Status == StatusPass && len(v.Findings) == 0
}
