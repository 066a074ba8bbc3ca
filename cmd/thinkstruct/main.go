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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/stevnnyee/thinkStruct-search-engine/internal/config"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/corpus"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/index"
	logpkg "github.com/stevnnyee/thinkStruct-search-engine/internal/logger"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/metrics"
	chiTransport "github.com/stevnnyee/thinkStruct-search-engine/internal/transport/chi"
	healthuc "github.com/stevnnyee/thinkStruct-search-engine/internal/usecase/health"
	searchuc "github.com/stevnnyee/thinkStruct-search-engine/internal/usecase/search"
	"github.com/stevnnyee/thinkStruct-search-engine/internal/version"
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

	logger.Info("Starting thinkstruct API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("data_dir", cfg.Corpus.DataDir),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	loader := corpus.NewLoader(cfg.Corpus.DataDir,
		corpus.WithPoolSize(cfg.Corpus.LoaderPoolSize),
		corpus.WithLogger(logger),
	)

	searchSvc := searchuc.New(loader,
		index.Config{
			NGramMax:    cfg.Index.NGramMax,
			MinDocFreq:  cfg.Index.MinDocFreq,
			MaxFeatures: cfg.Index.MaxFeatures,
		},
		searchuc.WithLogger(logger),
		searchuc.WithCandidateMultiplier(cfg.Search.HybridCandidateMultiplier),
	)

	// Build the initial index before taking traffic.
	ctx := context.Background()
	if err := searchSvc.Reload(ctx); err != nil {
		logger.Fatal("Failed to build initial index", zap.Error(err))
	}

	// Rebuild when batch files in the data directory change.
	if cfg.Corpus.Watch {
		watcher, err := corpus.NewWatcher(
			cfg.Corpus.DataDir,
			time.Duration(cfg.Corpus.ReloadDebounceSec)*time.Second,
			searchSvc.Reload,
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to create data dir watcher", zap.Error(err))
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.Error("data dir watcher stopped", zap.Error(err))
			}
		}()
	}

	healthSvc := healthuc.New(searchSvc)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, healthSvc, logger, chiTransport.Options{
		DefaultTopK:     cfg.Search.DefaultTopK,
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
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
