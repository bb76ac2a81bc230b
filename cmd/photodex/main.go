package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/photodex/internal/config"
	"github.com/kailas-cloud/photodex/internal/db/opensearch"
	dbRedis "github.com/kailas-cloud/photodex/internal/db/redis"
	"github.com/kailas-cloud/photodex/internal/domain"
	logpkg "github.com/kailas-cloud/photodex/internal/logger"
	"github.com/kailas-cloud/photodex/internal/metrics"
	"github.com/kailas-cloud/photodex/internal/repository/kwcache"
	photorepo "github.com/kailas-cloud/photodex/internal/repository/photo"
	awsTransport "github.com/kailas-cloud/photodex/internal/transport/aws"
	chiTransport "github.com/kailas-cloud/photodex/internal/transport/chi"
	openaiNLU "github.com/kailas-cloud/photodex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/photodex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/photodex/internal/usecase/ingest"
	keyworduc "github.com/kailas-cloud/photodex/internal/usecase/keyword"
	searchuc "github.com/kailas-cloud/photodex/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/photodex/internal/usecase/upload"
	"github.com/kailas-cloud/photodex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting photodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_endpoint", cfg.Index.Endpoint),
		zap.String("index_name", cfg.Index.Name),
		zap.String("nlu_provider", cfg.NLU.Active()),
	)

	ctx := context.Background()

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	awsCfg, err := awsTransport.LoadConfig(ctx, awsConfig(cfg))
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	index, err := newIndexClient(cfg, awsCfg)
	if err != nil {
		logger.Fatal("Failed to create index client", zap.Error(err))
	}
	if cfg.Index.EnsureIndex {
		if err := index.EnsureIndex(ctx, cfg.Index.Name, opensearch.PhotoMapping()); err != nil {
			logger.Fatal("Failed to ensure index", zap.String("index", cfg.Index.Name), zap.Error(err))
		}
		logger.Info("Index ready", zap.String("index", cfg.Index.Name))
	}

	// Optional keyword cache
	var cache *dbRedis.Store
	if cfg.Cache.Enabled() {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to keyword cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Repositories and collaborators
	photos := photorepo.New(index, cfg.Index.Name).WithMaxResults(cfg.Index.MaxResults)
	objects := awsTransport.NewObjectStore(awsTransport.NewS3Client(awsCfg, awsConfig(cfg)))
	detector := awsTransport.NewDetector(
		rekognition.NewFromConfig(awsCfg), cfg.Detection.MaxLabels, cfg.Detection.MinConfidence,
	)

	// Use case services
	slots, provider := buildSlotExtractor(cfg, awsCfg, cache, logger)
	keywordSvc := keyworduc.New(slots, provider)
	searchSvc := searchuc.New(photos, keywordSvc)
	ingestSvc := ingestuc.New(objects, detector, photos)

	var uploadSvc *uploaduc.Service
	if cfg.Upload.Bucket != "" {
		uploadSvc = uploaduc.New(objects, cfg.Upload.Bucket, cfg.Upload.MaxBytes)
	}

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cachePinger healthuc.Pinger
	if cache != nil {
		cachePinger = cache
	}
	healthSvc := healthuc.New(index, cachePinger, nluHealthChecker(slots))

	server := chiTransport.NewServer(searchSvc, ingestSvc, uploadSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", chiTransport.APIKeyHeader, "X-Amz-Meta-CustomLabels"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(chiTransport.APIKeyAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
			Code:    chiTransport.CodeNotFound,
			Message: "route not found",
		})
	})
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
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

func awsConfig(cfg config.Config) awsTransport.Config {
	return awsTransport.Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
		S3Endpoint:      cfg.AWS.S3Endpoint,
		S3PathStyle:     cfg.AWS.S3PathStyle,
	}
}

// newIndexClient creates the index engine client, SigV4-signed when configured.
func newIndexClient(cfg config.Config, awsCfg aws.Config) (*opensearch.Client, error) {
	var transport http.RoundTripper
	if cfg.Index.SignRequests {
		transport = awsTransport.NewSigningTransport(awsCfg, cfg.AWS.SigningService, nil)
	}
	client, err := opensearch.New(opensearch.Config{Endpoint: cfg.Index.Endpoint, Transport: transport})
	if err != nil {
		return nil, fmt.Errorf("index client: %w", err)
	}
	return client, nil
}

// buildSlotExtractor assembles the NLU tier: provider -> Cached. Returns a nil
// extractor when no provider is configured, which leaves only the fallback tokenizer.
func buildSlotExtractor(
	cfg config.Config, awsCfg aws.Config, cache *dbRedis.Store, logger *zap.Logger,
) (keyworduc.SlotExtractor, string) {
	provider := cfg.NLU.Active()

	var base domain.SlotExtractor
	switch provider {
	case config.NLUProviderLex:
		base = awsTransport.NewLexExtractor(lexruntimev2.NewFromConfig(awsCfg), awsTransport.LexConfig{
			BotID:      cfg.NLU.Lex.BotID,
			BotAliasID: cfg.NLU.Lex.BotAliasID,
			LocaleID:   cfg.NLU.Lex.LocaleID,
		})
	case config.NLUProviderOpenAI:
		base = openaiNLU.NewExtractor(&openaiNLU.Config{
			APIKey:  cfg.NLU.OpenAI.APIKey,
			BaseURL: cfg.NLU.OpenAI.BaseURL,
			Model:   cfg.NLU.OpenAI.Model,
			Logger:  logger,
		})
	default:
		if cfg.NLU.Provider != "" {
			logger.Warn("NLU provider configured without credentials, using fallback tokenizer only",
				zap.String("provider", cfg.NLU.Provider))
		}
		return nil, ""
	}

	if cache != nil {
		base = kwcache.New(base, cache, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.KeywordCacheTotal, logger)
	}
	return base, provider
}

// nluHealthChecker returns ex as a health check when its provider supports one.
// The cache decorator always has HealthCheck, so the decision is made on the wrapped provider.
func nluHealthChecker(ex keyworduc.SlotExtractor) healthuc.NLUChecker {
	base := ex
	if w, ok := ex.(interface{ Unwrap() domain.SlotExtractor }); ok {
		base = w.Unwrap()
	}
	if _, ok := base.(domain.HealthChecker); !ok {
		return nil
	}
	hc, ok := ex.(domain.HealthChecker)
	if !ok {
		return nil
	}
	return hc
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
