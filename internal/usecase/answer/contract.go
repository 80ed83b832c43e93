package answer

import (
	"context"

	"github.com/kailas-cloud/virtualta/internal/domain"
)

// Retriever searches the content store for ranked evidence.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

// Prompt is a two-turn exchange for the generative backend: a system
// instruction and a user turn, optionally carrying one inline image.
type Prompt struct {
	System   string
	User     string
	ImageB64 string // base64-encoded JPEG, empty when absent
}

// TextGenerator is the optional generative-text backend. Output length and
// sampling temperature are backend configuration, not per-call parameters.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}
