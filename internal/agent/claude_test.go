package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spylogsster/ai-diff-review/internal/domain"
)

// writeFakeBin writes an executable shell script and returns its path.
func writeFakeBin(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSettings(bin string) Settings {
	return Settings{
		BinOverride:      bin,
		Timeout:          30 * time.Second,
		PreflightTimeout: time.Second,
	}
}

func TestUnwrapClaudeEnvelope(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantUsage *domain.TokenUsage
	}{
		{
			name:      "envelope with usage",
			input:     `{"result": "{\"status\": \"pass\"}", "usage": {"input_tokens": 100, "output_tokens": 20}}`,
			want:      `{"status": "pass"}`,
			wantUsage: &domain.TokenUsage{Input: 100, Output: 20},
		},
		{
			name:  "envelope without usage",
			input: `{"result": "payload text"}`,
			want:  "payload text",
		},
		{
			name:  "not an envelope falls through raw",
			input: `{"status": "pass", "summary": "ok", "findings": []}`,
			want:  `{"status": "pass", "summary": "ok", "findings": []}`,
		},
		{
			name:  "invalid JSON falls through raw",
			input: "plain text answer",
			want:  "plain text answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, usage := unwrapClaudeEnvelope(tt.input)
			if got != tt.want {
				t.Errorf("payload = %q, want %q", got, tt.want)
			}
			if (usage == nil) != (tt.wantUsage == nil) {
				t.Fatalf("usage = %+v, want %+v", usage, tt.wantUsage)
			}
			if usage != nil && *usage != *tt.wantUsage {
				t.Errorf("usage = %+v, want %+v", usage, tt.wantUsage)
			}
		})
	}
}

func TestClaudeInvokeUnwrapsEnvelope(t *testing.T) {
	bin := writeFakeBin(t, "claude", `cat > /dev/null
echo '{"result": "{\"status\": \"pass\", \"summary\": \"clean\", \"findings\": []}", "usage": {"input_tokens": 10, "output_tokens": 5}}'`)

	adapter := NewClaudeAdapter(testSettings(bin))
	result := adapter.Invoke(context.Background(), "review this", InvokeOptions{SkipPreflight: true})

	if !result.IsAvailable() {
		t.Fatalf("expected available, got detail %q", result.Detail)
	}
	if result.Verdict.Status != domain.StatusPass || result.Verdict.Summary != "clean" {
		t.Errorf("unexpected verdict %+v", result.Verdict)
	}
	if result.Usage == nil || result.Usage.Input != 10 || result.Usage.Output != 5 {
		t.Errorf("unexpected usage %+v", result.Usage)
	}
}

func TestClaudeInvokeNonZeroExit(t *testing.T) {
	bin := writeFakeBin(t, "claude", `echo "auth failure" >&2; exit 1`)

	adapter := NewClaudeAdapter(testSettings(bin))
	result := adapter.Invoke(context.Background(), "review", InvokeOptions{SkipPreflight: true})

	if result.IsAvailable() {
		t.Fatal("expected unavailable on non-zero exit")
	}
	if result.Detail == "" {
		t.Error("expected diagnostic detail")
	}
}

func TestClaudeInvokeEmptyOutput(t *testing.T) {
	bin := writeFakeBin(t, "claude", `cat > /dev/null; exit 0`)

	adapter := NewClaudeAdapter(testSettings(bin))
	result := adapter.Invoke(context.Background(), "review", InvokeOptions{SkipPreflight: true})

	if result.IsAvailable() {
		t.Fatal("expected unavailable on empty stdout")
	}
}

func TestClaudeInvokeMalformedVerdict(t *testing.T) {
	bin := writeFakeBin(t, "claude", `cat > /dev/null; echo '{"result": "not a verdict at all"}'`)

	adapter := NewClaudeAdapter(testSettings(bin))
	result := adapter.Invoke(context.Background(), "review", InvokeOptions{SkipPreflight: true})

	if result.IsAvailable() {
		t.Fatal("expected parse failure to degrade to unavailable")
	}
}

func TestClaudeInvokeMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	adapter := NewClaudeAdapter(Settings{Timeout: time.Second, PreflightTimeout: time.Second})
	result := adapter.Invoke(context.Background(), "review", InvokeOptions{SkipPreflight: true})

	if result.IsAvailable() {
		t.Fatal("expected unavailable when binary missing")
	}
}
