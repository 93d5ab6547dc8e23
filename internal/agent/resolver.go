package agent

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/spylogsster/ai-diff-review/internal/domain"
)

// binaryNamePattern is the allow-list for candidate binary names. Candidates
// come from environment/config, so anything outside this set is rejected
// before it can reach a PATH lookup or argv.
var binaryNamePattern = regexp.MustCompile(`^[A-Za-z0-9_./-]+$`)

// Resolve locates an executable for the named backend.
//
// An explicit override wins and is returned verbatim without checking that it
// exists or is executable; that failure surfaces at invocation time with a
// better diagnostic. Otherwise each candidate name is tried on PATH. Claude
// additionally ships as a macOS desktop bundle, so on darwin a small fixed
// set of bundle-internal paths is probed as a last resort.
//
// Not finding a binary is not an error: the caller treats it as the backend
// being unavailable.
func Resolve(id domain.Identity, override string, candidates []string) (string, bool) {
	if strings.TrimSpace(override) != "" {
		return override, true
	}

	for _, name := range candidates {
		if !binaryNamePattern.MatchString(name) {
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}

	home, _ := os.UserHomeDir()
	for _, path := range bundlePaths(id, runtime.GOOS, home) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}

	return "", false
}

// bundlePaths returns the well-known desktop-bundle locations for a backend.
// Only claude ships a bundle, and only the macOS bundle format applies.
func bundlePaths(id domain.Identity, goos, home string) []string {
	if id != domain.BackendClaude || goos != "darwin" {
		return nil
	}
	paths := []string{
		"/Applications/Claude.app/Contents/Resources/app/claude",
	}
	if home != "" {
		paths = append([]string{filepath.Join(home, ".claude", "local", "claude")}, paths...)
	}
	return paths
}
