package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/QuackbackIO/quackback-sub007/common/id"
	"github.com/QuackbackIO/quackback-sub007/common/llm"
	"github.com/QuackbackIO/quackback-sub007/common/logger"
	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/common/otel"
	"github.com/QuackbackIO/quackback-sub007/core/config"
	"github.com/QuackbackIO/quackback-sub007/core/db"
	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
	"github.com/QuackbackIO/quackback-sub007/internal/brain"
	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
	"github.com/QuackbackIO/quackback-sub007/internal/queue"
	"github.com/QuackbackIO/quackback-sub007/internal/service"
	"github.com/QuackbackIO/quackback-sub007/internal/store"
	"github.com/QuackbackIO/quackback-sub007/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "intake worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.RedisGroup,
		"consumer_name", cfg.Pipeline.RedisConsumer,
		"concurrency", cfg.Worker.Concurrency)

	// Different node ID than the server
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Pipeline.RedisStream,
		Group:        cfg.Pipeline.RedisGroup,
		Consumer:     cfg.Pipeline.RedisConsumer,
		DLQStream:    cfg.Pipeline.RedisDLQStream,
		BatchSize:    cfg.Worker.BatchSize,
		Block:        5 * time.Second,
		MaxAttempts:  cfg.Worker.MaxAttempts,
		RequeueDelay: cfg.Worker.RequeueDelay,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	p, err := buildPipeline(cfg, database)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build pipeline", "error", err)
		os.Exit(1)
	}

	w := worker.New(consumer, p, worker.Config{
		MaxAttempts: cfg.Worker.MaxAttempts,
		Concurrency: cfg.Worker.Concurrency,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Pipeline.RedisStream,
		Group:     cfg.Pipeline.RedisGroup,
		Consumer:  cfg.Pipeline.RedisConsumer + "-reclaimer",
		MinIdle:   cfg.Worker.ReclaimMinIdle,
		Interval:  cfg.Worker.ReclaimInterval,
		BatchSize: 10,
	}, consumer, w.HandleMessage)

	var sweeper *worker.Sweeper
	if cfg.Worker.SweepInterval > 0 {
		producer := queue.NewRedisProducer(redisClient, cfg.Pipeline.RedisStream, slog.Default())
		ingest := service.NewFeedbackIngestService(store.NewStores(database.Queries()), producer, 0, slog.Default())
		sweeper = worker.NewSweeper(ingest, worker.SweeperConfig{
			Interval:   cfg.Worker.SweepInterval,
			StaleAfter: cfg.Worker.SweepStaleAfter,
			BatchSize:  cfg.Worker.SweepBatchSize,
		})
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.InfoContext(ctx, "metrics server starting", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "metrics server error", "error", err)
		}
	}()

	runCtx, stopRun := context.WithCancel(ctx)
	errCh := make(chan error, 3)
	running := 2
	go func() {
		errCh <- w.Run(runCtx)
	}()
	go func() {
		reclaimer.Run(runCtx)
		errCh <- nil
	}()
	if sweeper != nil {
		running++
		go func() {
			sweeper.Run(runCtx)
			errCh <- nil
		}()
	}

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop reclaimer and sweeper first (quick), then let in-flight items finish.
	reclaimer.Stop()
	if sweeper != nil {
		sweeper.Stop()
	}
	w.Stop()

	for range running {
		select {
		case <-shutdownCtx.Done():
			slog.WarnContext(ctx, "shutdown timeout exceeded, cancelling in-flight work")
			stopRun()
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
			}
		}
	}
	stopRun()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "metrics server shutdown error", "error", err)
	}
	if telemetry != nil {
		if err := telemetry.Shutdown(context.WithoutCancel(shutdownCtx)); err != nil {
			slog.ErrorContext(ctx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

func buildPipeline(cfg config.Config, database *db.DB) (*pipeline.Pipeline, error) {
	classifierLLM, err := llm.New(llm.Config{
		Provider:  cfg.ClassifierLLM.Provider,
		APIKey:    cfg.ClassifierLLM.APIKey,
		BaseURL:   cfg.ClassifierLLM.BaseURL,
		Model:     cfg.ClassifierLLM.Model,
		MaxTokens: cfg.ClassifierLLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	extractorLLM, err := llm.New(llm.Config{
		Provider:  cfg.ExtractorLLM.Provider,
		APIKey:    cfg.ExtractorLLM.APIKey,
		BaseURL:   cfg.ExtractorLLM.BaseURL,
		Model:     cfg.ExtractorLLM.Model,
		MaxTokens: cfg.ExtractorLLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	// One limiter for every outbound model call from this process.
	limiter := brain.NewLimiter(cfg.Capabilities.RequestsPerSecond, cfg.Capabilities.Burst)

	var embedder pipeline.Embedder
	if cfg.Embedding.Enabled() {
		embeddingClient, err := llm.NewEmbeddingClient(llm.EmbeddingConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		embedder = brain.NewLimitedEmbedder(brain.NewEmbedder(embeddingClient), limiter)
	} else {
		slog.Warn("embeddings disabled, every signal will produce a create suggestion")
	}

	gate := pipeline.NewGate(
		brain.NewLimitedClassifier(brain.NewClassifier(classifierLLM), limiter),
		pipeline.GateConfig{
			MinWordCount: cfg.Gate.MinWordCount,
			CallTimeout:  cfg.Capabilities.CallTimeout,
			IsRetryable:  llm.IsRetryable,
		})

	extractor := pipeline.NewExtractor(
		brain.NewLimitedSummarizer(brain.NewSummarizer(extractorLLM), limiter),
		embedder,
		pipeline.ExtractorConfig{
			CallTimeout: cfg.Capabilities.CallTimeout,
			IsRetryable: llm.IsRetryable,
		})

	matcher := pipeline.NewMatcher(pipeline.MatcherConfig{
		SimilarityThreshold: cfg.Matcher.SimilarityThreshold,
		CandidateLimit:      cfg.Matcher.CandidateLimit,
	})

	return pipeline.New(
		store.NewStores(database.Queries()),
		&pipelineTxRunnerAdapter{db: database},
		gate,
		extractor,
		matcher,
		pipeline.NewBuilder(),
		pipeline.Config{ClaimStaleAfter: cfg.Worker.ClaimStaleAfter},
	), nil
}

// pipelineTxRunnerAdapter bridges db.DB to pipeline.TxRunner.
type pipelineTxRunnerAdapter struct {
	db *db.DB
}

func (a *pipelineTxRunnerAdapter) WithTx(ctx context.Context, fn func(stores pipeline.StoreProvider) error) error {
	return a.db.WithTx(ctx, func(q *sqlc.Queries) error {
		return fn(store.NewStores(q))
	})
}
