package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	_ "github.com/bizmatters/agent-builder/success-blueprint/docs" // swagger docs
	"github.com/bizmatters/agent-builder/success-blueprint/internal/auth"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/config"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/gateway"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/llm"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/logging"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/metrics"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/orchestration"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/prompts"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/session"
	"github.com/bizmatters/agent-builder/success-blueprint/internal/wizard"
)

// @title AI Success Blueprint API
// @version 1.0
// @description Guided wizard and AI report service for evaluating agent ideas.

// @contact.name API Support
// @contact.email support@bizmatters.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings {
		logger.Warn("Configuration warning", zap.String("warning", w))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	tp, err := initTracer()
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	store, cleanup, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	chat, err := newChatBackend(cfg)
	if err != nil {
		return err
	}
	logger.Info("Chat backend configured", zap.String("backend", chat.Name()))

	builder := prompts.NewDefaultBuilder()
	if cfg.PromptsFile != "" {
		configs, err := prompts.LoadStageConfigs(cfg.PromptsFile)
		if err != nil {
			return fmt.Errorf("failed to load prompts: %w", err)
		}
		if builder, err = prompts.NewBuilder(configs); err != nil {
			return fmt.Errorf("failed to load prompts: %w", err)
		}
		logger.Info("Loaded prompt overrides", zap.String("path", cfg.PromptsFile))
	}

	snapshotMetrics, err := metrics.NewSnapshotMetrics()
	if err != nil {
		return fmt.Errorf("failed to create snapshot metrics: %w", err)
	}
	generationMetrics, err := metrics.NewGenerationMetrics()
	if err != nil {
		return fmt.Errorf("failed to create generation metrics: %w", err)
	}

	shim := session.NewShim(store, logger, snapshotMetrics)
	client := orchestration.NewGenerationClient(cfg.GenerationURL, cfg.GenerationTimeout, logger, generationMetrics)
	service := orchestration.NewService(client, builder, wizard.DefaultSteps(), shim, orchestration.ServiceConfig{
		ReportModel: cfg.ReportModel,
		MaxSessions: cfg.SessionCacheSize,
		SessionTTL:  cfg.SessionTTL,
	}, logger, generationMetrics)

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT manager: %w", err)
	}
	limiter, err := gateway.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.SessionCacheSize)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	checks := []gateway.ReadinessCheck{{
		Name: "generation",
		Check: func(ctx context.Context) error {
			if !service.IsHealthy(ctx) {
				return errors.New("circuit breaker open")
			}
			return nil
		},
	}}
	if p, ok := store.(session.Pinger); ok {
		checks = append(checks, gateway.ReadinessCheck{Name: "session store", Check: p.Ping})
	}

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := gateway.NewHandler(service, jwtManager, chat, cfg.SessionTokenTTL, logger)
	router := gateway.NewRouter(handler, gateway.NewReportStream(service, logger), limiter, checks, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout*3 + 30*time.Second, // three sequential report stages
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting AI Success Blueprint API server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

// openStore selects the snapshot store backend. The returned func releases it.
func openStore(cfg *config.Config, logger *zap.Logger) (session.Store, func(), error) {
	noop := func() {}
	switch cfg.SessionStore {
	case config.StorePostgres:
		pool, err := connectPostgres(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		store := session.NewPostgresStore(pool)
		if err := store.EnsureSchema(context.Background()); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to create snapshot table: %w", err)
		}
		logger.Info("Using Postgres snapshot store")
		return store, pool.Close, nil

	case config.StoreS3:
		store, err := session.NewObjectStore(session.S3Config(cfg.S3))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize object store: %w", err)
		}
		logger.Info("Using S3 snapshot store", zap.String("endpoint", cfg.S3.Endpoint), zap.String("bucket", cfg.S3.Bucket))
		return store, noop, nil
	}

	store, err := session.NewMemoryStore(cfg.SessionCacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize memory store: %w", err)
	}
	logger.Info("Using in-memory snapshot store", zap.Int("size", cfg.SessionCacheSize))
	return store, noop, nil
}

// connectPostgres connects with a retry loop for slow-starting databases.
func connectPostgres(dbURL string, logger *zap.Logger) (*pgxpool.Pool, error) {
	logger.Info("Connecting to PostgreSQL database...")
	var pool *pgxpool.Pool
	var err error
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(context.Background(), dbURL)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				logger.Info("Connected to PostgreSQL database")
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn("Waiting for database...", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
}

func newChatBackend(cfg *config.Config) (llm.Backend, error) {
	if cfg.Chat.Provider == config.ProviderGemini {
		client, err := llm.NewGeminiClient(context.Background(), cfg.Chat.GeminiKey, cfg.Chat.GeminiModel, "")
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return llm.NewOpenAIClient(cfg.Chat.OpenAIKey, cfg.Chat.OpenAIURL, cfg.Chat.OpenAIModel, cfg.GenerationTimeout), nil
}

// initTracer initializes OpenTelemetry tracing
func initTracer() (*trace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, nil
}
