package runner

import (
	"github.com/spylogsster/ai-diff-review/internal/domain"
)

// FallbackOrder returns the backend walk order for a run. The canonical order
// is claude, codex, gemini; when rotation names a known backend it is moved
// to the back of the queue while the relative order of the rest is preserved.
// An unknown rotation value is ignored.
func FallbackOrder(rotation string) []domain.Identity {
	order := domain.CanonicalOrder()
	if !domain.KnownIdentity(rotation) {
		return order
	}

	rotated := domain.Identity(rotation)
	result := make([]domain.Identity, 0, len(order))
	for _, id := range order {
		if id != rotated {
			result = append(result, id)
		}
	}
	return append(result, rotated)
}
