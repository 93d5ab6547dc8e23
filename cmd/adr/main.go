// Package main provides the CLI entry point for the AI diff review gate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spylogsster/ai-diff-review/internal/domain"
	"github.com/spylogsster/ai-diff-review/internal/terminal"
)

var (
	timeout       time.Duration
	lockThreshold int
	verbose       bool
	noConfig      bool
	forceClaude   bool
	forceCodex    bool
	forceGemini   bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "adr",
		Short: "AI diff review - gate commits on AI reviewer approval",
		Long: `Gate a commit on approval from AI-backed review agents invoked as local
CLI subprocesses (claude, codex, gemini), with automatic fallback between them.

Exit codes:
  0 - Approved
  1 - Blocked
  2 - Error
  130 - Interrupted`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildVersionString(),
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0,
		"Timeout per backend invocation (default: 2m, env: ADR_TIMEOUT)")
	rootCmd.PersistentFlags().IntVar(&lockThreshold, "lock-threshold", 0,
		"Consecutive failures before commits lock (default: 3, env: ADR_LOCK_THRESHOLD)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Print the full prompt and each backend's raw output")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false,
		"Skip loading the .adr.yaml config file")
	rootCmd.PersistentFlags().BoolVar(&forceClaude, "claude", false,
		"Use only the claude backend")
	rootCmd.PersistentFlags().BoolVar(&forceCodex, "codex", false,
		"Use only the codex backend")
	rootCmd.PersistentFlags().BoolVar(&forceGemini, "gemini", false,
		"Use only the gemini backend")

	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newRangeCmd())
	rootCmd.AddCommand(newPreCommitCmd())
	rootCmd.AddCommand(newInstallCmd())

	if err := rootCmd.Execute(); err != nil {
		// Check if this is an exit code wrapper (not a real error)
		if exitErr, ok := err.(exitCodeError); ok {
			return exitErr.code.Int()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return domain.ExitError.Int()
	}

	return 0
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(logger *terminal.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr)
		logger.Log("Interrupted, shutting down...", terminal.StyleWarning)
		cancel()
	}()

	return ctx, cancel
}

// forcedBackend resolves the mutually exclusive force flags. More than one
// set is a hard error at the CLI boundary.
func forcedBackend() (domain.Identity, error) {
	var forced []domain.Identity
	if forceClaude {
		forced = append(forced, domain.BackendClaude)
	}
	if forceCodex {
		forced = append(forced, domain.BackendCodex)
	}
	if forceGemini {
		forced = append(forced, domain.BackendGemini)
	}

	switch len(forced) {
	case 0:
		return "", nil
	case 1:
		return forced[0], nil
	default:
		return "", fmt.Errorf("--claude, --codex and --gemini are mutually exclusive")
	}
}
