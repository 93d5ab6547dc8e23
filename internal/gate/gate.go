// Package gate implements the consecutive-failure lock that turns repeated
// blocked commits into a hard stop requiring manual intervention.
package gate

import (
	"fmt"
	"strings"
	"time"

	"github.com/spylogsster/ai-diff-review/internal/control"
	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

// Gate tracks consecutive review failures and escalates to a lock once the
// threshold is reached. State lives in the control store so it survives
// across invocations.
type Gate struct {
	store     *control.Store
	threshold int
	logger    *terminal.Logger
}

// New creates a gate over the given store. threshold is the number of
// consecutive failures that trips the lock.
func New(store *control.Store, threshold int, logger *terminal.Logger) *Gate {
	return &Gate{store: store, threshold: threshold, logger: logger}
}

// Locked reports whether the lock marker is present. When locked, no review
// runs until the operator clears the state by hand.
func (g *Gate) Locked() bool {
	return g.store.Locked()
}

// RefusalMessage builds the operator-facing message shown when a run is
// refused because the gate is locked. It includes the last report, if one
// survives, and the exact files to remove.
func (g *Gate) RefusalMessage() string {
	var b strings.Builder
	b.WriteString("commits are locked after repeated failed reviews")
	if at := g.store.LockedAt(); at != "" {
		b.WriteString(" (" + at + ")")
	}
	b.WriteString("\n")

	if report, err := g.store.LoadReport(); err == nil && report != nil {
		b.WriteString("\nlast review:\n")
		for _, id := range domain.CanonicalOrder() {
			entry, ok := report[id]
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  %-7s %s", id, entry.Status))
			if entry.Summary != "" {
				b.WriteString(": " + entry.Summary)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nto unlock, review the feedback above, fix the issues, then run:\n")
	b.WriteString(fmt.Sprintf("  rm %s %s\n", g.store.LockPath(), g.store.CounterPath()))
	return b.String()
}

// RecordPass resets the failure streak.
func (g *Gate) RecordPass() {
	if err := g.store.ClearFailures(); err != nil {
		g.logf(terminal.StyleWarning, "%v", err)
	}
}

// RecordFail increments the streak and trips the lock at the threshold. It
// returns the new count and whether the lock was just written.
func (g *Gate) RecordFail() (count int, locked bool) {
	count = g.store.ReadFailures() + 1
	if err := g.store.WriteFailures(count); err != nil {
		g.logf(terminal.StyleWarning, "%v", err)
	}
	if count >= g.threshold {
		if err := g.store.WriteLock(time.Now()); err != nil {
			g.logf(terminal.StyleWarning, "%v", err)
		}
		return count, true
	}
	return count, false
}

// Threshold returns the configured lock threshold.
func (g *Gate) Threshold() int {
	return g.threshold
}

func (g *Gate) logf(style terminal.Style, format string, args ...any) {
	if g.logger != nil {
		g.logger.Logf(style, format, args...)
	}
}
