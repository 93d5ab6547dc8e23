// Package integration provides end-to-end tests for the adr binary using
// mock backend CLIs.
//
// The mocks return canned verdicts in the correct shape for each backend:
//   - claude: JSON envelope with a result field (--output-format json mode)
//   - codex: verdict written to the --output-last-message file
//   - gemini: verdict JSON on stdout
//
// Tests build the real binary, run it inside a throwaway git repo with
// staged changes, and assert on output and exit codes.
package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths and state for integration test execution.
type testEnv struct {
	adrBin   string // Path to built adr binary
	mockDir  string // Directory containing mock CLI scripts
	repoDir  string // Temporary git repo for test execution
	origPath string // Original PATH to restore
}

// setupTestEnv builds the adr binary and creates a temporary git repo with
// staged changes.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	rootDir := findRepoRoot(t)
	adrBin := filepath.Join(t.TempDir(), "adr")
	build := exec.Command("go", "build", "-o", adrBin, "./cmd/adr")
	build.Dir = rootDir
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("failed to build adr: %v\n%s", err, out)
	}

	mockDir := filepath.Join(t.TempDir(), "mocks")
	if err := os.MkdirAll(mockDir, 0755); err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		adrBin:   adrBin,
		mockDir:  mockDir,
		repoDir:  createTestRepo(t),
		origPath: os.Getenv("PATH"),
	}
}

// env builds the environment for a run: mocks first on PATH, token env vars
// set so no preflight probe touches the network, CI unset so the gate runs.
func (e *testEnv) env() []string {
	return []string{
		"PATH=" + e.mockDir + ":" + e.origPath,
		"HOME=" + e.repoDir,
		"ANTHROPIC_API_KEY=test",
		"OPENAI_API_KEY=test",
		"GEMINI_API_KEY=test",
		"CI=",
	}
}

// run executes adr with the given args and returns stdout, stderr, and exit code.
func (e *testEnv) run(args ...string) (stdout, stderr string, exitCode int) {
	cmd := exec.Command(e.adrBin, args...)
	cmd.Dir = e.repoDir
	cmd.Env = e.env()

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	exitCode = 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return outBuf.String(), errBuf.String(), exitCode
}

// findRepoRoot walks up to find the go.mod file.
func findRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find repo root (no go.mod)")
		}
		dir = parent
	}
}

// createTestRepo creates a temporary git repo with a staged change.
func createTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	git("init")
	git("config", "user.email", "test@test.com")
	git("config", "user.name", "Test")

	testFile := filepath.Join(dir, "main.go")
	if err := os.WriteFile(testFile, []byte("package main\n\nfunc main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	git("add", ".")
	git("commit", "-m", "initial")

	// Stage a change so `adr review` has a diff.
	content := "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello\")\n}\n"
	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	git("add", ".")

	return dir
}

// --- Canned Verdicts ---

const passVerdict = `{"status": "pass", "summary": "change is safe", "findings": []}`

const failVerdict = `{"status": "fail", "summary": "unchecked error return", "findings": [{"severity": "high", "title": "unchecked error", "details": "fmt.Println return value ignored", "file": "main.go", "line": 6}]}`

// --- Mock CLI Script Generators ---

// writeMockClaude writes a claude mock emitting the JSON envelope shape.
func writeMockClaude(t *testing.T, dir, verdict string) {
	t.Helper()
	quoted, err := json.Marshal(verdict)
	if err != nil {
		t.Fatal(err)
	}
	envelope := fmt.Sprintf(`{"result": %s, "usage": {"input_tokens": 100, "output_tokens": 25}}`, quoted)
	script := fmt.Sprintf(`#!/bin/sh
cat >/dev/null
printf '%%s\n' '%s'
`, escape(envelope))
	writeMock(t, dir, "claude", script)
}

// writeMockCodex writes a codex mock that finds --output-last-message in its
// arguments and writes the verdict there.
func writeMockCodex(t *testing.T, dir, verdict string) {
	t.Helper()
	script := fmt.Sprintf(`#!/bin/sh
cat >/dev/null
result=""
prev=""
for arg in "$@"; do
    if [ "$prev" = "--output-last-message" ]; then
        result="$arg"
    fi
    prev="$arg"
done
if [ -n "$result" ]; then
    printf '%%s\n' '%s' > "$result"
fi
`, escape(verdict))
	writeMock(t, dir, "codex", script)
}

// writeMockGemini writes a gemini mock emitting the verdict on stdout.
func writeMockGemini(t *testing.T, dir, verdict string) {
	t.Helper()
	script := fmt.Sprintf(`#!/bin/sh
cat >/dev/null
printf '%%s\n' '%s'
`, escape(verdict))
	writeMock(t, dir, "gemini", script)
}

// writeFailingMock writes a mock that exits non-zero, making that backend
// unavailable.
func writeFailingMock(t *testing.T, dir, name string) {
	t.Helper()
	writeMock(t, dir, name, "#!/bin/sh\ncat >/dev/null\nexit 1\n")
}

func writeMock(t *testing.T, dir, name, script string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write mock %s: %v", name, err)
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "'\"'\"'")
}

// --- Tests ---

func TestVersion(t *testing.T) {
	env := setupTestEnv(t)
	_, _, exitCode := env.run("--version")
	if exitCode != 0 {
		t.Errorf("exit code = %d, want 0", exitCode)
	}
}

func TestHelp(t *testing.T) {
	env := setupTestEnv(t)
	stdout, _, exitCode := env.run("--help")
	if exitCode != 0 {
		t.Errorf("exit code = %d, want 0", exitCode)
	}
	for _, want := range []string{"review", "range", "pre-commit", "install", "--claude", "--codex", "--gemini", "--timeout"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestForcedClaude_Pass(t *testing.T) {
	env := setupTestEnv(t)
	writeMockClaude(t, env.mockDir, passVerdict)

	_, stderr, exitCode := env.run("review", "--claude")
	if exitCode != 0 {
		t.Errorf("exit code = %d, want 0\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "Approved") {
		t.Errorf("expected approval message, stderr:\n%s", stderr)
	}
}

func TestForcedCodex_Fail(t *testing.T) {
	env := setupTestEnv(t)
	writeMockCodex(t, env.mockDir, failVerdict)

	_, stderr, exitCode := env.run("review", "--codex")
	if exitCode != 1 {
		t.Errorf("exit code = %d, want 1\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "unchecked error") {
		t.Errorf("expected finding in output, stderr:\n%s", stderr)
	}
}

func TestForcedGemini_Pass(t *testing.T) {
	env := setupTestEnv(t)
	writeMockGemini(t, env.mockDir, passVerdict)

	_, stderr, exitCode := env.run("review", "--gemini")
	if exitCode != 0 {
		t.Errorf("exit code = %d, want 0\nstderr: %s", exitCode, stderr)
	}
}

func TestConflictingForceFlags(t *testing.T) {
	env := setupTestEnv(t)

	_, stderr, exitCode := env.run("review", "--claude", "--codex")
	if exitCode != 2 {
		t.Errorf("exit code = %d, want 2\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "mutually exclusive") {
		t.Errorf("expected mutual exclusion error, stderr:\n%s", stderr)
	}
}

func TestFallbackToSecondBackend(t *testing.T) {
	env := setupTestEnv(t)
	writeFailingMock(t, env.mockDir, "claude")
	writeMockCodex(t, env.mockDir, passVerdict)
	writeMockGemini(t, env.mockDir, passVerdict)

	_, stderr, exitCode := env.run("review")
	if exitCode != 0 {
		t.Errorf("exit code = %d, want 0 via codex fallback\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "claude unavailable") {
		t.Errorf("expected claude unavailable warning, stderr:\n%s", stderr)
	}

	// The failed backend is rotated to the back of the queue.
	rotation, err := os.ReadFile(filepath.Join(env.repoDir, ".adr", "rotation"))
	if err != nil {
		t.Fatalf("rotation state not written: %v", err)
	}
	if strings.TrimSpace(string(rotation)) != "claude" {
		t.Errorf("rotation = %q, want claude", rotation)
	}
}

func TestAllBackendsUnavailable(t *testing.T) {
	env := setupTestEnv(t)
	for _, name := range []string{"claude", "codex", "gemini"} {
		writeFailingMock(t, env.mockDir, name)
	}

	_, stderr, exitCode := env.run("review")
	if exitCode != 1 {
		t.Errorf("exit code = %d, want 1\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "no reviewer was available") {
		t.Errorf("expected all-unavailable message, stderr:\n%s", stderr)
	}
}

func TestPreCommitLocksAfterThreshold(t *testing.T) {
	env := setupTestEnv(t)
	writeMockClaude(t, env.mockDir, failVerdict)

	// Default threshold is 3: two failures soft-block, the third locks.
	for i := 1; i <= 2; i++ {
		_, stderr, exitCode := env.run("pre-commit", "--claude")
		if exitCode != 1 {
			t.Fatalf("run %d: exit code = %d, want 1\nstderr: %s", i, exitCode, stderr)
		}
		if !strings.Contains(stderr, fmt.Sprintf("failed review %d of 3", i)) {
			t.Errorf("run %d: expected soft-block count, stderr:\n%s", i, stderr)
		}
	}

	_, stderr, exitCode := env.run("pre-commit", "--claude")
	if exitCode != 1 {
		t.Fatalf("third run: exit code = %d, want 1\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "commits are now locked") {
		t.Errorf("expected hard lock message, stderr:\n%s", stderr)
	}

	// Once locked, the refusal happens before any backend runs.
	writeMockClaude(t, env.mockDir, passVerdict)
	_, stderr, exitCode = env.run("pre-commit", "--claude")
	if exitCode != 1 {
		t.Errorf("locked run: exit code = %d, want 1\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "commits are locked") {
		t.Errorf("expected locked refusal, stderr:\n%s", stderr)
	}

	// Manual removal of the control files unlocks.
	os.Remove(filepath.Join(env.repoDir, ".adr", "lock"))
	os.Remove(filepath.Join(env.repoDir, ".adr", "failures"))
	_, stderr, exitCode = env.run("pre-commit", "--claude")
	if exitCode != 0 {
		t.Errorf("post-unlock run: exit code = %d, want 0\nstderr: %s", exitCode, stderr)
	}
}

func TestPreCommitPassResetsCounter(t *testing.T) {
	env := setupTestEnv(t)
	writeMockClaude(t, env.mockDir, failVerdict)

	if _, _, exitCode := env.run("pre-commit", "--claude"); exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode)
	}

	writeMockClaude(t, env.mockDir, passVerdict)
	if _, stderr, exitCode := env.run("pre-commit", "--claude"); exitCode != 0 {
		t.Fatalf("exit code = %d, want 0\nstderr: %s", exitCode, stderr)
	}

	if _, err := os.Stat(filepath.Join(env.repoDir, ".adr", "failures")); !os.IsNotExist(err) {
		t.Error("failure counter should be removed after a pass")
	}
}

func TestPreCommitCIBypass(t *testing.T) {
	env := setupTestEnv(t)
	// No mocks: nothing may be invoked in CI.

	cmd := exec.Command(env.adrBin, "pre-commit")
	cmd.Dir = env.repoDir
	cmd.Env = append(env.env(), "CI=true")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Errorf("CI bypass should exit 0, got %v\n%s", err, out)
	}
}

func TestEmptyDiff(t *testing.T) {
	env := setupTestEnv(t)
	// Commit the staged change away so nothing is staged.
	commit := exec.Command("git", "commit", "-m", "drain")
	commit.Dir = env.repoDir
	if out, err := commit.CombinedOutput(); err != nil {
		t.Fatalf("git commit: %v\n%s", err, out)
	}

	_, stderr, exitCode := env.run("review")
	if exitCode != 0 {
		t.Errorf("exit code = %d, want 0 (no changes)\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "no changes to review") {
		t.Errorf("expected no-changes message, stderr:\n%s", stderr)
	}

	// The report still gets written, with every backend skipped.
	report, err := os.ReadFile(filepath.Join(env.repoDir, ".adr", "report.json"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(report), `"skipped"`) {
		t.Errorf("report should mark backends skipped:\n%s", report)
	}
}

func TestRangeReview(t *testing.T) {
	env := setupTestEnv(t)
	writeMockGemini(t, env.mockDir, passVerdict)

	// Commit the staged change to create a two-commit history.
	commit := exec.Command("git", "commit", "-m", "add print")
	commit.Dir = env.repoDir
	if out, err := commit.CombinedOutput(); err != nil {
		t.Fatalf("git commit: %v\n%s", err, out)
	}

	_, stderr, exitCode := env.run("range", "HEAD~1", "HEAD", "--gemini")
	if exitCode != 0 {
		t.Errorf("exit code = %d, want 0\nstderr: %s", exitCode, stderr)
	}
}

func TestInstallHook(t *testing.T) {
	env := setupTestEnv(t)

	_, stderr, exitCode := env.run("install")
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0\nstderr: %s", exitCode, stderr)
	}

	hookPath := filepath.Join(env.repoDir, ".git", "hooks", "pre-commit")
	data, err := os.ReadFile(hookPath)
	if err != nil {
		t.Fatalf("hook not written: %v", err)
	}
	if !strings.Contains(string(data), "adr pre-commit") {
		t.Errorf("hook does not invoke adr pre-commit:\n%s", data)
	}

	// Second install without --force refuses.
	_, _, exitCode = env.run("install")
	if exitCode != 2 {
		t.Errorf("reinstall exit code = %d, want 2", exitCode)
	}

	// With --force it overwrites.
	_, _, exitCode = env.run("install", "--force")
	if exitCode != 0 {
		t.Errorf("forced reinstall exit code = %d, want 0", exitCode)
	}
}

func TestVerboseEchoesPrompt(t *testing.T) {
	env := setupTestEnv(t)
	writeMockClaude(t, env.mockDir, passVerdict)

	_, stderr, exitCode := env.run("review", "--claude", "--verbose")
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0\nstderr: %s", exitCode, stderr)
	}
	if !strings.Contains(stderr, "--- prompt ---") {
		t.Errorf("verbose run should echo the prompt, stderr:\n%s", stderr)
	}
}

func TestReportWritten(t *testing.T) {
	env := setupTestEnv(t)
	writeMockClaude(t, env.mockDir, passVerdict)

	if _, _, exitCode := env.run("review", "--claude"); exitCode != 0 {
		t.Fatal("review failed")
	}

	report, err := os.ReadFile(filepath.Join(env.repoDir, ".adr", "report.json"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	for _, want := range []string{`"claude"`, `"pass"`, `"skipped"`} {
		if !strings.Contains(string(report), want) {
			t.Errorf("report missing %s:\n%s", want, report)
		}
	}
}
