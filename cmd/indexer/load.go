package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	indexeruc "github.com/kailas-cloud/profilematch/internal/usecase/indexer"
)

type loadParams struct {
	path        string
	workers     int
	createIndex bool
	index       ensureIndexer
	repo        indexeruc.ProfileWriter
	embedder    indexeruc.Embedder
	logger      *zap.Logger
}

func load(ctx context.Context, p loadParams) error {
	f, err := os.Open(filepath.Clean(p.path))
	if err != nil {
		return fmt.Errorf("open seed: %w", err)
	}
	defer func() { _ = f.Close() }()

	profiles, err := indexeruc.ReadSeed(f)
	if err != nil {
		return err
	}
	p.logger.Info("Seed file read", zap.String("path", p.path), zap.Int("profiles", len(profiles)))

	stats, err := indexeruc.New(p.repo, p.embedder, p.workers, p.logger).Index(ctx, profiles)
	if err != nil {
		return err
	}

	if p.createIndex && stats.Embedded > 0 {
		created, err := p.index.EnsureIndex(ctx)
		if err != nil {
			return err
		}
		p.logger.Info("Vector index ready", zap.Bool("created", created))
	}
	return nil
}
