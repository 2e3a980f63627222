// Package ollama is an embedding provider for a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

const defaultTimeout = 120 * time.Second

// Config holds the Ollama connection settings.
type Config struct {
	Host    string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Embedder calls Ollama's /api/embed endpoint.
//
// The response nests the vector one level deep ({"embeddings": [[...]]}); the payload
// is returned as decoded so callers normalize it like any other provider shape.
type Embedder struct {
	host       string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings      any `json:"embeddings"`
	PromptEvalCount int `json:"prompt_eval_count"`
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Embedder{
		host:       cfg.Host,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (c *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: text})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embed request: %w: %w", err, domain.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embed: status %d: %s: %w",
			resp.StatusCode, bytes.TrimSpace(msg), domain.ErrProviderUnavailable)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("decode embed response: %w: %w", err, domain.ErrProviderUnavailable)
	}
	if result.Embeddings == nil {
		return domain.EmbeddingResult{}, fmt.Errorf("ollama returned no embeddings: %w", domain.ErrProviderUnavailable)
	}

	return domain.EmbeddingResult{
		Vector:       result.Embeddings,
		PromptTokens: result.PromptEvalCount,
		TotalTokens:  result.PromptEvalCount,
	}, nil
}

// HealthCheck verifies Ollama is reachable.
func (c *Embedder) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama tags: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama tags: status %d", resp.StatusCode)
	}
	return nil
}
