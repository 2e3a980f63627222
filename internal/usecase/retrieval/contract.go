package retrieval

import (
	"context"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/domain/lexical"
)

// ProfileStore loads the candidate catalog.
type ProfileStore interface {
	// List returns every valid profile in id order.
	List(ctx context.Context) ([]domain.Profile, error)
	// Get returns a single profile or domain.ErrNotFound.
	Get(ctx context.Context, id string) (domain.Profile, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorIndex is a pre-built nearest-neighbor index over the catalog.
type VectorIndex interface {
	SearchNearest(ctx context.Context, vector []float32, topN int) ([]domain.Neighbor, error)
}

// LexicalRanker scores candidates by term overlap without any external call.
type LexicalRanker interface {
	Rank(query string, profiles []domain.Profile) ([]lexical.Match, error)
}

// LexicalRankerFunc adapts a plain ranking function to LexicalRanker.
type LexicalRankerFunc func(query string, profiles []domain.Profile) []lexical.Match

// Rank calls f.
func (f LexicalRankerFunc) Rank(query string, profiles []domain.Profile) ([]lexical.Match, error) {
	return f(query, profiles), nil
}
