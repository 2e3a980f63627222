// Package indexer embeds catalog profiles and writes them to the profile store.
package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/domain/vector"
)

// DefaultWorkers is the embedding pool size.
const DefaultWorkers = 4

const releaseTimeout = 5 * time.Second

// Stats summarizes one Index run.
type Stats struct {
	Loaded   int // valid profiles written
	Skipped  int // dropped for missing id or name
	Embedded int // written with a vector
	Failed   int // written without a vector after an embedding error
}

// Service embeds profiles on a bounded worker pool and upserts them.
type Service struct {
	writer  ProfileWriter
	embed   Embedder
	workers int
	logger  *zap.Logger
}

// New creates an indexer. workers <= 0 uses DefaultWorkers.
func New(writer ProfileWriter, embed Embedder, workers int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{writer: writer, embed: embed, workers: workers, logger: logger}
}

// Index drops invalid profiles, embeds the rest and writes them in one batch.
// A profile whose embedding fails is still written; retrieval embeds it on demand.
func (s *Service) Index(ctx context.Context, profiles []domain.Profile) (Stats, error) {
	var stats Stats

	valid := make([]domain.Profile, 0, len(profiles))
	for i := range profiles {
		if !profiles[i].Valid() {
			stats.Skipped++
			s.logger.Warn("Skipping invalid profile", zap.Int("position", i), zap.String("id", profiles[i].ID))
			continue
		}
		valid = append(valid, profiles[i])
	}
	if len(valid) == 0 {
		return stats, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return stats, fmt.Errorf("create pool: %w", err)
	}
	defer func() { _ = pool.ReleaseTimeout(releaseTimeout) }()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for i := range valid {
		p := &valid[i]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			v, err := s.embedProfile(ctx, p)
			if err != nil {
				s.logger.Warn("Embedding failed, storing profile without vector",
					zap.String("id", p.ID), zap.Error(err))
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			p.Vector = v
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			wg.Wait()
			return stats, fmt.Errorf("submit %s: %w", p.ID, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("index: %w", err)
	}

	if err := s.writer.Upsert(ctx, valid); err != nil {
		return stats, fmt.Errorf("upsert: %w", err)
	}

	stats.Loaded = len(valid)
	stats.Failed = failed
	stats.Embedded = len(valid) - failed
	s.logger.Info("Profiles indexed",
		zap.Int("loaded", stats.Loaded),
		zap.Int("embedded", stats.Embedded),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (s *Service) embedProfile(ctx context.Context, p *domain.Profile) ([]float32, error) {
	res, err := s.embed.Embed(ctx, p.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	v, err := vector.Flatten(res.Vector)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return vector.Narrow(v), nil
}
