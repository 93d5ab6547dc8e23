package agent

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// command describes one backend CLI invocation.
type command struct {
	// Path is the resolved executable path.
	Path string
	// Args are the command-line arguments.
	Args []string
	// Stdin is piped to the process (typically the prompt).
	Stdin string
}

// execOutcome captures a completed (or killed) subprocess.
type execOutcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// runCommand executes a backend CLI with a wall-clock timeout.
//
// The child is started in its own process group so that a timeout can kill
// the entire tree: agent CLIs spawn their own descendants, and an orphaned
// one keeps network and file resources open long after the review is over.
// A timed-out run is reported through execOutcome.TimedOut, not an error;
// the only error case is failing to start the process at all.
func runCommand(ctx context.Context, timeout time.Duration, spec command) (execOutcome, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// #nosec G204 - the path comes from Resolve, which allow-lists candidate
	// names before any PATH lookup; overrides are explicit operator config.
	cmd := exec.Command(spec.Path, spec.Args...)
	if spec.Stdin != "" {
		cmd.Stdin = strings.NewReader(spec.Stdin)
	}
	cmd.SysProcAttr = sysProcAttr()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return execOutcome{}, fmt.Errorf("failed to start %s: %w", spec.Path, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	var timedOut bool
	select {
	case waitErr = <-done:
	case <-runCtx.Done():
		timedOut = true
		killTree(cmd.Process.Pid)
		waitErr = <-done
	}

	outcome := execOutcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		TimedOut: timedOut,
	}
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			outcome.ExitCode = exitErr.ExitCode()
		} else {
			outcome.ExitCode = -1
		}
	}
	return outcome, nil
}

// exitDetail formats a non-zero exit for the operator-facing log, surfacing
// the first stderr (or stdout) line as the diagnostic.
func exitDetail(name string, out execOutcome) string {
	detail := fmt.Sprintf("%s exited with code %d", name, out.ExitCode)
	msg := strings.TrimSpace(out.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(out.Stdout)
	}
	if msg != "" {
		if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
			msg = msg[:idx]
		}
		detail += ": " + msg
	}
	return detail
}
