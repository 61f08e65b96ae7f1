package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"llm_relay/backend/go/internal/config"
	"llm_relay/backend/go/internal/llm"
	"llm_relay/backend/go/internal/qa_service/api"
	"llm_relay/backend/go/internal/qa_service/normalizer"
	"llm_relay/backend/go/internal/qa_service/service"
	httpx "llm_relay/backend/go/pkg/http"
	"llm_relay/backend/go/pkg/httpmiddleware"
	"llm_relay/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load Configuration
	// The file is optional; environment variables alone are enough.
	configPath := os.Getenv("QA_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(cfg.Logger.Level)
	appLogger := logger.New(cfg.App.Name, "")
	appLogger.Info("Starting QA Service...")

	// 3. Refuse to start without the provider credential
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingCredential) {
			log.Fatalf("Refusing to start: %v", err)
		}
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 4. Initialize Dependencies
	client, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create %s LLM client: %v", cfg.LLM.Provider, err)
	}
	breaker, err := httpx.NewCircuitBreaker(cfg.Middleware.CircuitBreaker)
	if err != nil {
		log.Fatalf("Failed to create circuit breaker: %v", err)
	}
	if breaker != nil {
		appLogger.Info("Enabling circuit breaker around the LLM provider.")
		client = llm.WithCircuitBreaker(client, breaker)
	}

	norm := normalizer.New(normalizer.WithMaxChars(cfg.Normalizer.MaxChars))
	qaService := service.NewQAService(client, norm, appLogger)

	// 5. Start HTTP Server in a goroutine
	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(api.NewHandler(qaService, appLogger, cfg.Server.MaxUploadBytes))
	srv := httpx.NewServer(router,
		httpx.WithAddress(cfg.Server.Address),
		httpx.WithLogger(appLogger),
		httpx.WithMiddleware(
			httpmiddleware.RequestID(),
			httpmiddleware.AccessLog(appLogger),
			httpmiddleware.CORS(),
		),
	)

	go func() {
		appLogger.Info(fmt.Sprintf("Using %s provider, upload formats: %v", client.Name(), norm.Allowed()))
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	if closer, ok := client.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			appLogger.Error(fmt.Sprintf("Failed to close %s client: %v", client.Name(), err))
		}
	}
	appLogger.Info("Server gracefully stopped")
}
