package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/grocerly/backend/config"
	"github.com/pageza/grocerly/backend/internal/api"
	"github.com/pageza/grocerly/backend/internal/database"
	"github.com/pageza/grocerly/backend/internal/health"
	"github.com/pageza/grocerly/backend/internal/middleware"
	"github.com/pageza/grocerly/backend/internal/ollama"
	"github.com/pageza/grocerly/backend/internal/router"
	"github.com/pageza/grocerly/backend/internal/server"
	"github.com/pageza/grocerly/backend/internal/suggestion"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := log.Default()

	client, err := ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaTimeout, nil)
	if err != nil {
		log.Fatalf("Failed to create Ollama client: %v", err)
	}
	suggestionService := suggestion.NewService(client, cfg.OllamaModel, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := health.NewMonitor(client, cfg.HealthProbeSchedule, cfg.OllamaTimeout, logger)
	if err := monitor.Start(ctx); err != nil {
		log.Fatalf("Failed to start health monitor: %v", err)
	}
	defer monitor.Stop()

	var limiter middleware.Limiter
	if cfg.RateLimitPerMinute > 0 {
		redisClient, err := database.NewRedisClient(ctx, cfg)
		if err != nil {
			// Continue with the in-process limiter if Redis is not available
			log.Printf("Warning: Failed to connect to Redis for rate limiting: %v", err)
			redisClient = nil
		}
		if redisClient != nil {
			defer redisClient.Close()
		}
		limiter = middleware.NewSuggestionRateLimiter(redisClient, cfg.RateLimitPerMinute)
	}

	handler := router.SetupRouter(
		api.NewSuggestionHandler(suggestionService, client),
		monitor,
		router.Options{
			AllowOrigins: cfg.CORSAllowOrigins,
			Limiter:      limiter,
			Logger:       logger,
		},
	)

	// Create and start server
	srv := server.New(cfg, handler, logger)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server (environment=%s, model=%s, ollama=%s)...", cfg.Environment, cfg.OllamaModel, cfg.OllamaBaseURL)
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			log.Printf("Server error: %v", err)
			return
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	// Gracefully shutdown the server
	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
		return
	}
	log.Println("Server stopped")
}
