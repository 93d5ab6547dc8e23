package agent

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// writeTempFile writes data to a uniquely named file in the system temp
// directory and returns its path. The caller is responsible for removing it
// with cleanupTempFile.
func writeTempFile(prefix string, data []byte) (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("adr-%s-%s", prefix, uuid.New().String()))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return path, nil
}

// tempFilePath returns a unique path in the system temp directory without
// creating the file. Used for result files the backend itself writes.
func tempFilePath(prefix string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("adr-%s-%s", prefix, uuid.New().String()))
}

// cleanupTempFile removes a temporary file. Cleanup failures are non-fatal
// and only produce a warning.
func cleanupTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to clean up temp file %s: %v\n", path, err)
	}
}
