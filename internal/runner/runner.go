// Package runner provides the review execution engine: the sequential
// fallback walk over reviewer backends and the aggregation of their verdicts.
package runner

import (
	"context"
	"strings"

	"github.com/spylogsster/ai-diff-review/internal/agent"
	"github.com/spylogsster/ai-diff-review/internal/config"
	"github.com/spylogsster/ai-diff-review/internal/control"
	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

// Runner drives a single review run: it picks the backend order, invokes
// adapters until one delivers a verdict, persists the rotation state and the
// report, and aggregates the outcome.
type Runner struct {
	cfg      config.ResolvedConfig
	store    *control.Store
	logger   *terminal.Logger
	adapters map[domain.Identity]agent.Adapter
}

// New creates a runner with adapters built from the resolved config.
func New(cfg config.ResolvedConfig, store *control.Store, logger *terminal.Logger) *Runner {
	backends := map[domain.Identity]config.BackendOverrides{
		domain.BackendClaude: cfg.Claude,
		domain.BackendCodex:  cfg.Codex,
		domain.BackendGemini: cfg.Gemini,
	}
	adapters := make(map[domain.Identity]agent.Adapter, len(backends))
	for id, ov := range backends {
		adapters[id] = agent.NewAdapter(id, agent.Settings{
			BinOverride:      ov.Bin,
			Model:            ov.Model,
			Timeout:          cfg.Timeout,
			PreflightTimeout: cfg.PreflightTimeout,
			Logger:           logger,
		})
	}
	return &Runner{cfg: cfg, store: store, logger: logger, adapters: adapters}
}

// Outcome is the full result of one run.
type Outcome struct {
	Decision Decision
	Results  []domain.ReviewerResult
	Report   control.Report
}

// Review runs the review for one diff. prompt is the fully assembled reviewer
// prompt; diff is the raw diff it was built from, used only to short-circuit
// empty changes. force, when non-empty, names the single backend to use.
func (r *Runner) Review(ctx context.Context, prompt, diff string, force domain.Identity) Outcome {
	report := control.NewReport()

	if strings.TrimSpace(diff) == "" {
		r.logger.Log("no changes to review", terminal.StyleInfo)
		r.saveReport(report)
		return Outcome{
			Decision: Decision{Pass: true, Reason: "no changes to review"},
			Report:   report,
		}
	}

	var results []domain.ReviewerResult
	if force != "" {
		results = r.runForced(ctx, prompt, force, report)
	} else {
		results = r.runFallback(ctx, prompt, report)
	}

	r.saveReport(report)
	return Outcome{Decision: Aggregate(results), Results: results, Report: report}
}

// runForced invokes exactly one backend with preflight disabled. Rotation
// state is left untouched.
func (r *Runner) runForced(ctx context.Context, prompt string, force domain.Identity, report control.Report) []domain.ReviewerResult {
	adapter := r.adapters[force]
	r.logger.Logf(terminal.StyleInfo, "reviewing with %s (forced)", force)

	result := adapter.Invoke(ctx, prompt, agent.InvokeOptions{SkipPreflight: true})
	r.record(result, report)
	return []domain.ReviewerResult{result}
}

// runFallback walks the backends in fallback order, stopping at the first
// one that delivers a verdict. The first unavailable backend of the walk is
// persisted as rotation state; a walk with no unavailable backend clears it.
func (r *Runner) runFallback(ctx context.Context, prompt string, report control.Report) []domain.ReviewerResult {
	order := FallbackOrder(r.store.ReadRotation())

	var results []domain.ReviewerResult
	var firstUnavailable domain.Identity

	for _, id := range order {
		r.logger.Logf(terminal.StyleInfo, "reviewing with %s", id)
		result := r.adapters[id].Invoke(ctx, prompt, agent.InvokeOptions{})
		r.record(result, report)
		results = append(results, result)

		if result.IsAvailable() {
			break
		}
		if firstUnavailable == "" {
			firstUnavailable = id
		}
	}

	if firstUnavailable != "" {
		if err := r.store.WriteRotation(firstUnavailable); err != nil {
			r.logger.Logf(terminal.StyleWarning, "%v", err)
		}
	} else {
		if err := r.store.ClearRotation(); err != nil {
			r.logger.Logf(terminal.StyleWarning, "%v", err)
		}
	}

	return results
}

func (r *Runner) record(result domain.ReviewerResult, report control.Report) {
	if result.IsAvailable() {
		report.SetVerdict(result.Backend, result.Verdict)
		return
	}
	report.SetUnavailable(result.Backend)
}

func (r *Runner) saveReport(report control.Report) {
	if err := r.store.SaveReport(report); err != nil {
		r.logger.Logf(terminal.StyleWarning, "%v", err)
	}
	if r.cfg.ReportPath != "" {
		if err := control.WriteReportFile(r.cfg.ReportPath, report); err != nil {
			r.logger.Logf(terminal.StyleWarning, "%v", err)
		}
	}
}
