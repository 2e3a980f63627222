package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/bootstrap"
	"github.com/kailas-cloud/profilematch/internal/config"
	logpkg "github.com/kailas-cloud/profilematch/internal/logger"
	"github.com/kailas-cloud/profilematch/internal/metrics"
	profilerepo "github.com/kailas-cloud/profilematch/internal/repository/profile"
	chiTransport "github.com/kailas-cloud/profilematch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/profilematch/internal/usecase/health"
	"github.com/kailas-cloud/profilematch/internal/usecase/recommend"
	"github.com/kailas-cloud/profilematch/internal/usecase/retrieval"
	"github.com/kailas-cloud/profilematch/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, Service: "profilematch"})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting profilematch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("retrieval_strategy", cfg.Retrieval.Strategy),
	)

	ctx := context.Background()
	store, err := bootstrap.Store(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	queryEmbedder, err := bootstrap.Embedder(cfg.Embedding, cfg.Embedding.QueryInstruction, logger)
	if err != nil {
		logger.Fatal("Failed to create query embedder", zap.Error(err))
	}
	docEmbedder, err := bootstrap.Embedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, logger)
	if err != nil {
		logger.Fatal("Failed to create document embedder", zap.Error(err))
	}
	chatModel := bootstrap.ChatModel(cfg.Chat, logger)
	logger.Info("Providers created",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("chat_model", cfg.Chat.Model),
	)

	profiles := profilerepo.New(store)
	opts := []retrieval.Option{
		retrieval.WithMode(retrieval.Mode(cfg.Retrieval.Strategy)),
		retrieval.WithCandidateEmbedder(docEmbedder),
		retrieval.WithTopK(cfg.Retrieval.TopK),
		retrieval.WithMaxConcurrency(cfg.Retrieval.MaxConcurrency),
	}
	if cfg.Retrieval.Strategy == string(retrieval.ModeIndex) {
		index := profilerepo.NewIndex(store, profilerepo.IndexConfig{
			Dimensions:  cfg.Embedding.Dimensions,
			Algorithm:   cfg.Index.Algorithm,
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
		if _, err := index.EnsureIndex(ctx); err != nil {
			logger.Fatal("Failed to ensure vector index", zap.Error(err))
		}
		opts = append(opts, retrieval.WithVectorIndex(index))
	}

	retrievalSvc := retrieval.New(profiles, queryEmbedder, logger, opts...)
	recommendSvc := recommend.New(retrievalSvc, chatModel, logger,
		recommend.WithSystemPrompt(cfg.Chat.SystemPrompt))
	healthSvc := healthuc.New(store, map[string]healthuc.Checker{
		"embedding": newEmbeddingHealthChecker(queryEmbedder),
		"chat":      chatModel,
	}, logger)

	server := chiTransport.NewServer(recommendSvc, retrievalSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
