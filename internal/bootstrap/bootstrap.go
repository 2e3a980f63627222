// Package bootstrap builds the providers and store shared by the server and the indexer.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/config"
	dbValkey "github.com/kailas-cloud/profilematch/internal/db/valkey"
	"github.com/kailas-cloud/profilematch/internal/domain"
	"github.com/kailas-cloud/profilematch/internal/transport/ollama"
	openaiTransport "github.com/kailas-cloud/profilematch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/profilematch/internal/usecase/embedding"
)

// Store connects to Valkey and waits until it answers PING.
func Store(ctx context.Context, cfg config.DatabaseConfig) (*dbValkey.Store, error) {
	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// Embedder assembles the decorator chain: provider -> Instrumented -> Instruction.
func Embedder(cfg config.EmbeddingConfig, instruction string, logger *zap.Logger) (domain.Embedder, error) {
	var base domain.Embedder
	switch cfg.Provider {
	case "openai":
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
	case "ollama":
		base = ollama.NewEmbedder(&ollama.Config{
			Host:    cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:  logger,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(base, cfg.Provider, cfg.Model, logger)

	// Instruction prefix is outermost.
	if instruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder, nil
}

// ChatModel creates the OpenAI-compatible conversational model.
func ChatModel(cfg config.ChatConfig, logger *zap.Logger) *openaiTransport.ChatModel {
	return openaiTransport.NewChatModel(&openaiTransport.ChatConfig{
		Config: openaiTransport.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
}
