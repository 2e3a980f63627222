package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

type fakeIndex struct{ calls int }

func (f *fakeIndex) EnsureIndex(context.Context) (bool, error) {
	f.calls++
	return true, nil
}

type fakeRepo struct{ got []domain.Profile }

func (f *fakeRepo) Upsert(_ context.Context, profiles []domain.Profile) error {
	f.got = profiles
	return nil
}

type fakeEmbedder struct{ err error }

func (f fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Vector: []float32{0.6, 0.8}}, f.err
}

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const seed = `
profiles:
  - id: p1
    name: Ada
    tags: [math]
  - id: p2
`

func TestLoad_WritesProfilesAndEnsuresIndex(t *testing.T) {
	idx := &fakeIndex{}
	repo := &fakeRepo{}

	err := load(context.Background(), loadParams{
		path:        writeSeed(t, seed),
		workers:     2,
		createIndex: true,
		index:       idx,
		repo:        repo,
		embedder:    fakeEmbedder{},
		logger:      zap.NewNop(),
	})
	require.NoError(t, err)

	require.Len(t, repo.got, 1, "profile without a name is dropped")
	assert.Equal(t, []float32{0.6, 0.8}, repo.got[0].Vector)
	assert.Equal(t, 1, idx.calls)
}

func TestLoad_SkipsIndexWhenNothingEmbedded(t *testing.T) {
	idx := &fakeIndex{}

	err := load(context.Background(), loadParams{
		path:        writeSeed(t, seed),
		createIndex: true,
		index:       idx,
		repo:        &fakeRepo{},
		embedder:    fakeEmbedder{err: domain.ErrProviderUnavailable},
		logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	assert.Zero(t, idx.calls)
}

func TestLoad_MissingFile(t *testing.T) {
	err := load(context.Background(), loadParams{
		path:   filepath.Join(t.TempDir(), "missing.yaml"),
		logger: zap.NewNop(),
	})
	require.Error(t, err)
}

func TestApp_Commands(t *testing.T) {
	app := newApp()

	names := make([]string, 0, len(app.Commands))
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"load", "create-index", "drop-index"}, names)

	t.Run("unknown flag fails before connecting", func(t *testing.T) {
		err := app.Run([]string{"indexer", "load", "--no-such-flag"})
		require.Error(t, err)
	})
}
