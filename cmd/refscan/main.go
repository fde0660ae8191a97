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

	"github.com/pathlab-cloud/refscan/internal/config"
	dbRedis "github.com/pathlab-cloud/refscan/internal/db/redis"
	logpkg "github.com/pathlab-cloud/refscan/internal/logger"
	"github.com/pathlab-cloud/refscan/internal/metrics"
	catalogrepo "github.com/pathlab-cloud/refscan/internal/repository/catalog"
	chiTransport "github.com/pathlab-cloud/refscan/internal/transport/chi"
	openaiVision "github.com/pathlab-cloud/refscan/internal/transport/openai"
	cataloguc "github.com/pathlab-cloud/refscan/internal/usecase/catalog"
	confidenceuc "github.com/pathlab-cloud/refscan/internal/usecase/confidence"
	healthuc "github.com/pathlab-cloud/refscan/internal/usecase/health"
	matchuc "github.com/pathlab-cloud/refscan/internal/usecase/match"
	normalizeuc "github.com/pathlab-cloud/refscan/internal/usecase/normalize"
	scanuc "github.com/pathlab-cloud/refscan/internal/usecase/scan"
	"github.com/pathlab-cloud/refscan/internal/version"
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

	logger.Info("Starting refscan API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("vision_model", cfg.Vision.Model),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register domain metrics explicitly (no init())
	metrics.RegisterExtractionMetrics()

	// Catalog source + per-tenant snapshot provider
	catalogRepo := catalogrepo.New(store, cfg.Catalog.KeyPrefix)
	provider := cataloguc.NewProvider(
		catalogRepo,
		time.Duration(cfg.Catalog.RefreshIntervalSec)*time.Second,
		logger,
	)
	go provider.Run(ctx)

	// Vision extraction provider
	extractor := openaiVision.NewExtractor(&openaiVision.Config{
		APIKey:   cfg.Vision.APIKey,
		BaseURL:  cfg.Vision.BaseURL,
		Model:    cfg.Vision.Model,
		Provider: "openai",
		Timeout:  time.Duration(cfg.Vision.TimeoutSec) * time.Second,
		Logger:   logger,
	})

	// Use case services — composition root
	normalizer := normalizeuc.New()
	matcher := matchuc.New(cfg.Matching.AcceptThreshold, cfg.Matching.SeparationThreshold)
	scorer := confidenceuc.New()
	scanSvc := scanuc.New(extractor, normalizer, provider, matcher, scorer)
	healthSvc := healthuc.New(store, extractor)

	server := chiTransport.NewServer(scanSvc, healthSvc, int(cfg.Vision.MaxImageSizeMB), logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.JWTAuthMiddleware(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience))
	r.Use(metrics.Middleware())
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
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer shutdownCancel()

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
						"code":  "internal_error",
						"error": "internal error",
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

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}
