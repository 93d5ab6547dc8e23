package domain

import "fmt"

// Identity names one reviewer backend. The set is closed per build: adding a
// backend means adding a constant here plus one adapter, never runtime probing.
type Identity string

const (
	BackendClaude Identity = "claude"
	BackendCodex  Identity = "codex"
	BackendGemini Identity = "gemini"
)

// CanonicalOrder is the fixed priority order backends are tried in when no
// backend is forced and no rotation state applies.
func CanonicalOrder() []Identity {
	return []Identity{BackendClaude, BackendCodex, BackendGemini}
}

// ParseIdentity converts a backend name into an Identity.
func ParseIdentity(name string) (Identity, error) {
	switch Identity(name) {
	case BackendClaude, BackendCodex, BackendGemini:
		return Identity(name), nil
	}
	return "", fmt.Errorf("unknown backend %q, supported: claude, codex, gemini", name)
}

// KnownIdentity reports whether name is a member of the backend set.
func KnownIdentity(name string) bool {
	_, err := ParseIdentity(name)
	return err == nil
}
