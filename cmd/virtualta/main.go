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

	"github.com/kailas-cloud/virtualta/internal/config"
	"github.com/kailas-cloud/virtualta/internal/domain"
	logpkg "github.com/kailas-cloud/virtualta/internal/logger"
	"github.com/kailas-cloud/virtualta/internal/metrics"
	"github.com/kailas-cloud/virtualta/internal/repository/content"
	chiTransport "github.com/kailas-cloud/virtualta/internal/transport/chi"
	openaiGen "github.com/kailas-cloud/virtualta/internal/transport/openai"
	answeruc "github.com/kailas-cloud/virtualta/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/virtualta/internal/usecase/health"
	"github.com/kailas-cloud/virtualta/internal/version"
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

	logger.Info("Starting virtualta API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.Bool("ai_path_enabled", cfg.OpenAI.APIKey != ""),
	)

	store, err := content.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open content store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Content store ready")

	// Register generation metrics explicitly (no init())
	metrics.RegisterGenerationMetrics()

	// Optional generative backend — the service answers without it.
	var generator answeruc.TextGenerator
	var backendChecker healthuc.BackendChecker
	if cfg.OpenAI.APIKey != "" {
		gen := openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
			Logger:      logger,
		})
		generator = gen
		backendChecker = gen
		logger.Info("Generative backend configured", zap.String("model", cfg.OpenAI.Model))
	}

	answerSvc := answeruc.New(store, generator, answeruc.Config{
		Course:       cfg.Answer.Course,
		SearchLimit:  cfg.Answer.SearchLimit,
		SnippetChars: cfg.Answer.SnippetChars,
		Advisories:   advisoriesFromConfig(cfg.Answer.Advisories),
	}).WithMetrics(metrics.AnswersTotal)

	healthSvc := healthuc.New(store, backendChecker)

	server := chiTransport.NewServer(answerSvc, store, healthSvc, logger).
		WithRequestTimeout(time.Duration(cfg.HTTP.RequestSec) * time.Second).
		WithStatsWindow(statsWindowFromConfig(cfg.Stats, logger))

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.RateLimitMiddleware(cfg.HTTP.RatePerMinute, cfg.HTTP.RateBurst))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// advisoriesFromConfig converts the config table into the usecase's type.
func advisoriesFromConfig(advisories []config.Advisory) []answeruc.Advisory {
	out := make([]answeruc.Advisory, len(advisories))
	for i, a := range advisories {
		out[i] = answeruc.Advisory{Name: a.Name, Keywords: a.Keywords, Advice: a.Advice}
	}
	return out
}

// statsWindowFromConfig parses the stats window bounds; nil when unset.
func statsWindowFromConfig(cfg config.StatsConfig, logger *zap.Logger) *domain.StatsWindow {
	if cfg.WindowFrom == "" || cfg.WindowTo == "" {
		return nil
	}
	from, err := time.Parse("2006-01-02", cfg.WindowFrom)
	if err != nil {
		logger.Warn("invalid stats.window_from, window disabled", zap.String("value", cfg.WindowFrom))
		return nil
	}
	to, err := time.Parse("2006-01-02", cfg.WindowTo)
	if err != nil {
		logger.Warn("invalid stats.window_to, window disabled", zap.String("value", cfg.WindowTo))
		return nil
	}
	// Include the whole end day.
	return &domain.StatsWindow{From: from, To: to.Add(24*time.Hour - time.Nanosecond)}
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
						"error": "Internal server error",
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
