package indexer

import (
	"context"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// ProfileWriter persists profiles with their vectors.
type ProfileWriter interface {
	Upsert(ctx context.Context, profiles []domain.Profile) error
}

// Embedder vectorizes profile text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
