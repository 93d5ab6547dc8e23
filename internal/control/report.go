package control

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spylogsster/ai-diff-review/internal/domain"
)

// Entry statuses beyond pass/fail. "unavailable" marks a backend that was
// tried and could not deliver a verdict; "skipped" marks one that was never
// invoked (an earlier backend answered, or the run short-circuited).
const (
	EntryUnavailable = "unavailable"
	EntrySkipped     = "skipped"
)

// ReportEntry is one backend's line in the persisted report. For verdict
// entries Status is pass/fail and Summary and Findings carry the verdict;
// for the other two statuses both stay empty.
type ReportEntry struct {
	Status   string           `json:"status"`
	Summary  string           `json:"summary,omitempty"`
	Findings []domain.Finding `json:"findings,omitempty"`
}

// Report maps each known backend to its outcome for the most recent run.
type Report map[domain.Identity]ReportEntry

// NewReport returns a report with every known backend marked skipped.
func NewReport() Report {
	r := make(Report, len(domain.CanonicalOrder()))
	for _, id := range domain.CanonicalOrder() {
		r[id] = ReportEntry{Status: EntrySkipped}
	}
	return r
}

// SetVerdict records a delivered verdict for a backend.
func (r Report) SetVerdict(id domain.Identity, v *domain.ReviewVerdict) {
	r[id] = ReportEntry{
		Status:   string(v.Status),
		Summary:  v.Summary,
		Findings: v.Findings,
	}
}

// SetUnavailable marks a backend as tried but unable to deliver.
func (r Report) SetUnavailable(id domain.Identity) {
	r[id] = ReportEntry{Status: EntryUnavailable}
}

// SaveReport writes the report as indented JSON.
func (s *Store) SaveReport(r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return s.write(reportFile, append(data, '\n'))
}

// LoadReport reads the last persisted report. A missing or unreadable file
// returns nil with no error; a present but corrupt file returns an error.
func (s *Store) LoadReport() (Report, error) {
	data, err := os.ReadFile(s.Path(reportFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return r, nil
}

// ReportPath returns where the report is written, for user messaging.
func (s *Store) ReportPath() string {
	return s.Path(reportFile)
}

// WriteReportFile writes a report copy to an arbitrary path, for configs that
// point a CI artifact collector at a fixed location.
func WriteReportFile(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report copy: %w", err)
	}
	return nil
}
