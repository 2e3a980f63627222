package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/domain/lexical"
	"github.com/kailas-cloud/profilematch/internal/domain/vector"
	"github.com/kailas-cloud/profilematch/internal/metrics"
)

// DefaultTopK is the number of profiles handed to the context assembler.
const DefaultTopK = 5

// DefaultMaxConcurrency bounds in-flight candidate embedding calls.
const DefaultMaxConcurrency = 8

// Mode selects how candidates get their vectors.
type Mode string

const (
	// ModeEmbed uses each candidate's stored vector, embedding the rest on the fly.
	ModeEmbed Mode = "embed"
	// ModeIndex delegates candidate scoring to the vector index.
	ModeIndex Mode = "index"
)

// Strategy names the stage that produced a result.
type Strategy string

const (
	StrategyVector      Strategy = "vector"
	StrategyLexical     Strategy = "lexical"
	StrategyPassthrough Strategy = "passthrough"
	StrategyEmpty       Strategy = "empty"
)

// Fallback stages reported in metrics.
const (
	stageLoad           = "load"
	stageQueryEmbed     = "query_embed"
	stageCandidateEmbed = "candidate_embed"
	stageIndex          = "index"
	stageLexical        = "lexical"
)

var errIndexNotConfigured = errors.New("vector index not configured")

// Result is the ranked, truncated candidate list. Scores are not exposed.
type Result struct {
	Profiles []domain.Profile
	Strategy Strategy
}

// Option configures the Service.
type Option func(*Service)

// WithMode selects the candidate scoring mode.
func WithMode(m Mode) Option {
	return func(s *Service) { s.mode = m }
}

// WithVectorIndex sets the index used by ModeIndex.
func WithVectorIndex(idx VectorIndex) Option {
	return func(s *Service) { s.index = idx }
}

// WithCandidateEmbedder embeds candidates with a different embedder than queries.
func WithCandidateEmbedder(e Embedder) Option {
	return func(s *Service) { s.candidateEmbed = e }
}

// WithLexicalRanker replaces the default lexical ranker.
func WithLexicalRanker(r LexicalRanker) Option {
	return func(s *Service) { s.lexical = r }
}

// WithMaxConcurrency bounds the candidate embedding fan-out.
func WithMaxConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// WithTopK overrides the result size.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// Service retrieves and ranks profiles for a free-text query.
// Vector scoring is tried first, lexical overlap second, load order last.
type Service struct {
	store          ProfileStore
	queryEmbed     Embedder
	candidateEmbed Embedder
	index          VectorIndex
	lexical        LexicalRanker
	mode           Mode
	topK           int
	maxConcurrency int
	logger         *zap.Logger
}

// New creates a retrieval service.
func New(store ProfileStore, embed Embedder, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:          store,
		queryEmbed:     embed,
		candidateEmbed: embed,
		lexical:        LexicalRankerFunc(lexical.Rank),
		mode:           ModeEmbed,
		topK:           DefaultTopK,
		maxConcurrency: DefaultMaxConcurrency,
		logger:         logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns a single profile by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Profile, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Retrieve returns at most K profiles ranked for query.
//
// Provider and index failures never surface: they move retrieval to the next
// strategy. An error is returned only for a blank query or a cancelled context.
func (s *Service) Retrieve(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, fmt.Errorf("%w: query is required", domain.ErrInput)
	}

	start := time.Now()
	res, err := s.retrieve(ctx, query)
	if err != nil {
		return Result{}, err
	}

	metrics.RetrievalTotal.WithLabelValues(string(res.Strategy)).Inc()
	metrics.RetrievalDuration.WithLabelValues(string(res.Strategy)).Observe(time.Since(start).Seconds())

	s.logger.Debug("Retrieval completed",
		zap.String("strategy", string(res.Strategy)),
		zap.Int("results", len(res.Profiles)),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (s *Service) retrieve(ctx context.Context, query string) (Result, error) {
	candidates, err := s.store.List(ctx)
	if err != nil {
		s.fallback(stageLoad, err)
		return Result{Strategy: StrategyEmpty}, nil
	}
	if len(candidates) == 0 {
		return Result{Strategy: StrategyEmpty}, nil
	}

	ranked, stage, err := s.scoreVector(ctx, query, candidates)
	if err == nil {
		return Result{Profiles: rankAndTruncate(ranked, s.topK), Strategy: StrategyVector}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, fmt.Errorf("retrieve: %w", ctxErr)
	}
	s.fallback(stage, err)

	ranked, err = s.scoreLexical(query, candidates)
	if err == nil {
		return Result{Profiles: rankAndTruncate(ranked, s.topK), Strategy: StrategyLexical}, nil
	}
	s.fallback(stageLexical, err)

	return Result{Profiles: truncate(unscored(candidates), s.topK), Strategy: StrategyPassthrough}, nil
}

func (s *Service) fallback(stage string, err error) {
	metrics.RetrievalFallbackTotal.WithLabelValues(stage).Inc()
	s.logger.Warn("Retrieval stage failed, falling back",
		zap.String("stage", stage),
		zap.Error(err),
	)
}

// scoreVector scores every candidate against the query embedding.
// On failure it reports the stage that broke.
func (s *Service) scoreVector(
	ctx context.Context, query string, candidates []domain.Profile,
) ([]scored, string, error) {
	q, err := s.embedText(ctx, s.queryEmbed, query)
	if err != nil {
		return nil, stageQueryEmbed, fmt.Errorf("embed query: %w", err)
	}

	if s.mode == ModeIndex {
		ranked, err := s.scoreByIndex(ctx, q, candidates)
		if err != nil {
			return nil, stageIndex, err
		}
		return ranked, "", nil
	}

	ranked, err := s.scoreByEmbedding(ctx, q, candidates)
	if err != nil {
		return nil, stageCandidateEmbed, err
	}
	return ranked, "", nil
}

// scoreByEmbedding embeds candidates without a stored vector concurrently.
// One failed call fails the whole stage.
func (s *Service) scoreByEmbedding(
	ctx context.Context, query []float64, candidates []domain.Profile,
) ([]scored, error) {
	out := unscored(candidates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i := range out {
		p := &out[i].profile
		if len(p.Vector) > 0 {
			out[i].score = vector.Similarity(query, vector.Widen(p.Vector))
			continue
		}
		g.Go(func() error {
			v, err := s.embedText(gctx, s.candidateEmbed, p.EmbeddingText())
			if err != nil {
				return fmt.Errorf("embed candidate %s: %w", p.ID, err)
			}
			out[i].score = vector.Similarity(query, v)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per candidate
	}
	return out, nil
}

// scoreByIndex converts index distances to similarities. Candidates the index
// did not return keep the similarity floor.
func (s *Service) scoreByIndex(
	ctx context.Context, query []float64, candidates []domain.Profile,
) ([]scored, error) {
	if s.index == nil {
		return nil, errIndexNotConfigured
	}

	neighbors, err := s.index.SearchNearest(ctx, vector.Narrow(query), len(candidates))
	if err != nil {
		return nil, fmt.Errorf("search nearest: %w", err)
	}

	byID := make(map[string]float64, len(neighbors))
	for _, n := range neighbors {
		byID[n.ID] = vector.Floor(vector.FromDistance(n.Distance))
	}

	out := unscored(candidates)
	for i := range out {
		score, ok := byID[out[i].profile.ID]
		if !ok {
			score = vector.SimilarityFloor
		}
		out[i].score = score
	}
	return out, nil
}

// scoreLexical runs the lexical ranker, turning a panic into an error.
func (s *Service) scoreLexical(query string, candidates []domain.Profile) (ranked []scored, err error) {
	defer func() {
		if r := recover(); r != nil {
			ranked, err = nil, fmt.Errorf("lexical ranker panic: %v", r)
		}
	}()

	matches, err := s.lexical.Rank(query, candidates)
	if err != nil {
		return nil, fmt.Errorf("lexical rank: %w", err)
	}

	ranked = make([]scored, len(matches))
	for i, m := range matches {
		ranked[i] = scored{profile: m.Profile, score: float64(m.Score), position: i}
	}
	return ranked, nil
}

func (s *Service) embedText(ctx context.Context, e Embedder, text string) ([]float64, error) {
	res, err := e.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	v, err := vector.Flatten(res.Vector)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return v, nil
}
