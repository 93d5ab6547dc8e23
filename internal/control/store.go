// Package control manages the small persisted control files the gate keeps
// between runs: the rotation state, the consecutive-failure counter, the
// lock marker, and the last report.
//
// Files are read-then-written within a single run with no cross-process
// locking. That is acceptable because commits are serialized by the human
// developer workflow; it is a known limitation, not a guarantee.
package control

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spylogsster/ai-diff-review/internal/domain"
)

// DirName is the control-file directory created at the repository root.
const DirName = ".adr"

const (
	rotationFile = "rotation"
	counterFile  = "failures"
	lockFile     = "lock"
	reportFile   = "report.json"
)

// Dir returns the control directory path for a repository root.
func Dir(repoRoot string) string {
	return filepath.Join(repoRoot, DirName)
}

// Store reads and writes the control files in one directory. All read
// failures degrade to "no prior state"; write failures are returned so the
// caller can log a warning, but nothing here is ever fatal to a run.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the absolute path of a control file, for operator-facing
// messages.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// LockPath returns the lock marker location.
func (s *Store) LockPath() string {
	return s.Path(lockFile)
}

// CounterPath returns the failure counter location.
func (s *Store) CounterPath() string {
	return s.Path(counterFile)
}

func (s *Store) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create control directory %s: %w", s.dir, err)
	}
	if err := os.WriteFile(s.Path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *Store) remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// ReadRotation returns the persisted "last backend observed unavailable"
// value, or empty when there is none (including on read failure).
func (s *Store) ReadRotation() string {
	data, err := os.ReadFile(s.Path(rotationFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// WriteRotation persists the backend to rotate to the back of the queue.
func (s *Store) WriteRotation(id domain.Identity) error {
	return s.write(rotationFile, []byte(string(id)+"\n"))
}

// ClearRotation removes the rotation state.
func (s *Store) ClearRotation() error {
	return s.remove(rotationFile)
}

// ReadFailures returns the persisted consecutive-failure count. Absent or
// unparseable counter files read as zero.
func (s *Store) ReadFailures() int {
	data, err := os.ReadFile(s.Path(counterFile))
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// WriteFailures persists the consecutive-failure count.
func (s *Store) WriteFailures(n int) error {
	return s.write(counterFile, []byte(strconv.Itoa(n)+"\n"))
}

// ClearFailures removes the counter file.
func (s *Store) ClearFailures() error {
	return s.remove(counterFile)
}

// Locked reports whether the lock marker exists.
func (s *Store) Locked() bool {
	info, err := os.Stat(s.Path(lockFile))
	return err == nil && !info.IsDir()
}

// WriteLock creates the lock marker with a locked-at annotation. Once
// present it blocks all further review attempts until an operator removes
// it manually.
func (s *Store) WriteLock(at time.Time) error {
	body := fmt.Sprintf("locked-at: %s\n", at.UTC().Format(time.RFC3339))
	return s.write(lockFile, []byte(body))
}

// LockedAt returns the raw lock marker contents, or empty if unreadable.
func (s *Store) LockedAt() string {
	data, err := os.ReadFile(s.Path(lockFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
