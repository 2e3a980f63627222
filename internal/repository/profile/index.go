package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/profilematch/internal/db"
	"github.com/kailas-cloud/profilematch/internal/domain"
)

// IndexName is the FT index over profile hashes.
const IndexName = KeyPrefix + "idx"

// indexStore is the consumer interface for the FT index (ISP).
type indexStore interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// IndexConfig holds vector index parameters.
type IndexConfig struct {
	Dimensions  int
	Algorithm   string // HNSW or FLAT
	M           int
	EFConstruct int
}

// Index implements usecase/retrieval.VectorIndex over the profile hashes.
type Index struct {
	store indexStore
	cfg   IndexConfig
}

// NewIndex creates a profile vector index handle.
func NewIndex(s indexStore, cfg IndexConfig) *Index {
	return &Index{store: s, cfg: cfg}
}

// EnsureIndex creates the index unless it exists. Returns true when it was created.
func (x *Index) EnsureIndex(ctx context.Context) (bool, error) {
	def, err := buildIndex(x.cfg)
	if err != nil {
		return false, err
	}

	exists, err := x.store.IndexExists(ctx, IndexName)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := x.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index: %w", err)
	}
	return true, nil
}

// Drop removes the index, keeping the profile hashes.
func (x *Index) Drop(ctx context.Context) error {
	if err := x.store.DropIndex(ctx, IndexName); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// SearchNearest returns up to topN profiles nearest to vector with their cosine distances.
func (x *Index) SearchNearest(ctx context.Context, vector []float32, topN int) ([]domain.Neighbor, error) {
	sr, err := x.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		VectorField:  fieldVector,
		Vector:       vector,
		K:            topN,
		ReturnFields: []string{fieldID},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	out := make([]domain.Neighbor, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := e.Fields[fieldID]
		if id == "" {
			id = strings.TrimPrefix(e.Key, KeyPrefix)
		}
		out = append(out, domain.Neighbor{ID: id, Distance: e.Distance})
	}
	return out, nil
}

// buildIndex creates the profile index definition: a single cosine vector field.
func buildIndex(cfg IndexConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(IndexName).Prefix(KeyPrefix)

	switch strings.ToUpper(cfg.Algorithm) {
	case "", string(db.VectorHNSW):
		b = b.VectorHNSW(fieldVector, cfg.Dimensions, db.DistanceCosine, cfg.M, cfg.EFConstruct)
	case string(db.VectorFlat):
		b = b.VectorFlat(fieldVector, cfg.Dimensions, db.DistanceCosine)
	default:
		return nil, fmt.Errorf("unknown vector algorithm %q", cfg.Algorithm)
	}

	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return def, nil
}
