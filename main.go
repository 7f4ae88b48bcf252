package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/archivium-lab/chorus/internal/agents"
	"github.com/archivium-lab/chorus/internal/config"
	"github.com/archivium-lab/chorus/internal/embeddings"
	"github.com/archivium-lab/chorus/internal/health"
	"github.com/archivium-lab/chorus/internal/httpapi"
	"github.com/archivium-lab/chorus/internal/llm"
	_ "github.com/archivium-lab/chorus/internal/metrics" // metric registration
	"github.com/archivium-lab/chorus/internal/personas"
	"github.com/archivium-lab/chorus/internal/retrieval"
	"github.com/archivium-lab/chorus/internal/streaming"
	"github.com/archivium-lab/chorus/internal/tracing"
	"github.com/archivium-lab/chorus/internal/vectordb"
	"github.com/archivium-lab/chorus/internal/workflows"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	features, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := tracing.Initialize(tracing.Config{
		Enabled:      features.Tracing.Enabled,
		ServiceName:  features.Tracing.ServiceName,
		OTLPEndpoint: features.Tracing.OTLPEndpoint,
	}, logger); err != nil {
		logger.Warn("Tracing disabled", zap.Error(err))
	}

	// Persona configuration is fatal on error: a run without its cast has
	// no meaning. Everything downstream degrades instead.
	personaCfg, err := personas.LoadConfig(features.PersonasPath)
	if err != nil {
		logger.Fatal("Failed to load personas",
			zap.String("path", features.PersonasPath),
			zap.Error(err))
	}
	store := personas.NewStore(personas.NewRegistry(personaCfg), features.PersonasPath, logger)
	if err := store.Watch(ctx); err != nil {
		logger.Warn("Persona hot-reload unavailable", zap.Error(err))
	}

	var cache embeddings.Cache
	var redisCache *embeddings.RedisCache
	if features.Embeddings.EnableRedis {
		redisCache, err = embeddings.NewRedisCache(features.Embeddings.RedisAddr)
		if err != nil {
			logger.Warn("Redis cache unavailable, continuing with local LRU only",
				zap.String("addr", features.Embeddings.RedisAddr),
				zap.Error(err))
		} else {
			cache = redisCache
		}
	}

	embedder := embeddings.NewService(embeddings.Config{
		BaseURL:      features.Embeddings.BaseURL,
		DefaultModel: features.Embeddings.Model,
		Timeout:      config.Timeout(features.Embeddings.TimeoutMs, 5*time.Second),
		CacheTTL:     time.Duration(features.Embeddings.CacheTTLSec) * time.Second,
		MaxLRU:       features.Embeddings.MaxLRU,
	}, cache)

	vectorClient := vectordb.NewClient(vectordb.Config{
		Enabled:    features.VectorDB.Enabled,
		Host:       features.VectorDB.Host,
		Port:       features.VectorDB.Port,
		Collection: features.VectorDB.Collection,
		Timeout:    config.Timeout(features.VectorDB.TimeoutMs, 5*time.Second),
	}, logger)

	provider, err := llm.New(llm.Config{
		Provider:          features.LLM.Provider,
		BaseURL:           features.LLM.BaseURL,
		Model:             features.LLM.Model,
		Timeout:           config.Timeout(features.LLM.TimeoutMs, 120*time.Second),
		MaxTokens:         features.LLM.MaxTokens,
		Temperature:       features.LLM.Temperature,
		RequestsPerSecond: features.LLM.RequestsPerSecond,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generation provider", zap.Error(err))
	}

	retriever := retrieval.NewRetriever(embedder, vectorClient, retrieval.Config{
		DesiredCount: features.Retrieval.DesiredCount,
	}, logger)
	executor := agents.NewExecutor(retriever, provider, logger)
	stream := streaming.NewManager(features.Streaming.RingCapacity)
	orchestrator := workflows.NewOrchestrator(store, executor, provider, stream, logger)

	// Health checks: the vector store and generation backend gate
	// readiness; Redis only degrades, the local LRU covers it.
	hm := health.NewManager(logger)
	mustRegister(logger, hm, health.NewVectorStoreChecker(vectorClient.Healthz))
	if features.LLM.Provider == "" || features.LLM.Provider == "service" {
		mustRegister(logger, hm, health.NewHTTPChecker("llm", features.LLM.BaseURL+"/health", true))
	}
	if redisCache != nil {
		mustRegister(logger, hm, health.NewPingChecker("redis", redisCache, false))
	}

	mux := http.NewServeMux()
	httpapi.NewAskHandler(orchestrator, logger).RegisterRoutes(mux)
	httpapi.NewStreamingHandler(stream, logger).RegisterRoutes(mux)
	health.NewHandler(hm).RegisterRoutes(mux)

	// Probes get their own listener when configured off the API port, so
	// kubelet traffic never queues behind slow synchronous runs.
	if features.Server.HealthPort > 0 && features.Server.HealthPort != features.Server.Port {
		go func() {
			healthMux := http.NewServeMux()
			health.NewHandler(hm).RegisterRoutes(healthMux)
			addr := ":" + strconv.Itoa(features.Server.HealthPort)
			logger.Info("Health server listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, healthMux); err != nil && err != http.ErrServerClosed {
				logger.Error("Health server failed", zap.Error(err))
			}
		}()
	}

	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		addr := ":" + strconv.Itoa(features.Server.MetricsPort)
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, metricsMux); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(features.Server.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // runs are synchronous and slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}

func mustRegister(logger *zap.Logger, hm *health.Manager, c health.Checker) {
	if err := hm.Register(c); err != nil {
		logger.Fatal("Health checker registration failed", zap.Error(err))
	}
}
