package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/bootstrap"
	"github.com/kailas-cloud/profilematch/internal/config"
	dbValkey "github.com/kailas-cloud/profilematch/internal/db/valkey"
	logpkg "github.com/kailas-cloud/profilematch/internal/logger"
	profilerepo "github.com/kailas-cloud/profilematch/internal/repository/profile"
	indexeruc "github.com/kailas-cloud/profilematch/internal/usecase/indexer"
	"github.com/kailas-cloud/profilematch/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "indexer",
		Usage:   "Load catalog profiles into Valkey and manage the vector index",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Config environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "load",
				Usage:  "Embed profiles from a YAML seed file and upsert them",
				Action: loadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Seed file (default: storage.seed_file)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent embedding requests",
						Value: indexeruc.DefaultWorkers,
					},
					&cli.BoolFlag{
						Name:  "create-index",
						Usage: "Ensure the vector index after loading",
						Value: true,
					},
				},
			},
			{
				Name:   "create-index",
				Usage:  "Create the profile vector index if missing",
				Action: createIndexCommand,
			},
			{
				Name:   "drop-index",
				Usage:  "Drop the profile vector index, keeping profile hashes",
				Action: dropIndexCommand,
			},
		},
	}
}

// session holds what every subcommand needs.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	store  *dbValkey.Store
}

func setup(c *cli.Context) (*session, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, Service: "indexer"})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := bootstrap.Store(c.Context, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, store: store}, nil
}

func (s *session) close() {
	s.store.Close()
	_ = s.logger.Sync()
}

func (s *session) index() *profilerepo.Index {
	return profilerepo.NewIndex(s.store, profilerepo.IndexConfig{
		Dimensions:  s.cfg.Embedding.Dimensions,
		Algorithm:   s.cfg.Index.Algorithm,
		M:           s.cfg.Index.HNSWM,
		EFConstruct: s.cfg.Index.HNSWEFConstruct,
	})
}

func loadCommand(c *cli.Context) error {
	s, err := setup(c)
	if err != nil {
		return err
	}
	defer s.close()

	path := c.String("file")
	if path == "" {
		path = s.cfg.Storage.SeedFile
	}

	embedder, err := bootstrap.Embedder(s.cfg.Embedding, s.cfg.Embedding.DocumentInstruction, s.logger)
	if err != nil {
		return err
	}

	return load(c.Context, loadParams{
		path:        path,
		workers:     c.Int("workers"),
		createIndex: c.Bool("create-index"),
		index:       s.index(),
		repo:        profilerepo.New(s.store),
		embedder:    embedder,
		logger:      s.logger,
	})
}

func createIndexCommand(c *cli.Context) error {
	s, err := setup(c)
	if err != nil {
		return err
	}
	defer s.close()

	created, err := s.index().EnsureIndex(c.Context)
	if err != nil {
		return err
	}
	s.logger.Info("Vector index ready", zap.String("index", profilerepo.IndexName), zap.Bool("created", created))
	return nil
}

func dropIndexCommand(c *cli.Context) error {
	s, err := setup(c)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.index().Drop(c.Context); err != nil {
		return err
	}
	s.logger.Info("Vector index dropped", zap.String("index", profilerepo.IndexName))
	return nil
}

// ensureIndexer is satisfied by *profilerepo.Index.
type ensureIndexer interface {
	EnsureIndex(ctx context.Context) (bool, error)
}
