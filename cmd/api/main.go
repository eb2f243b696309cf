package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ratio-analytics-website/config"
	_ "ratio-analytics-website/docs" // Important for Swagger
	v1 "ratio-analytics-website/internal/delivery/http/v1"
	"ratio-analytics-website/internal/transport"
	"ratio-analytics-website/internal/usecase"
	"ratio-analytics-website/pkg/email"
	"ratio-analytics-website/pkg/logger"
	"ratio-analytics-website/pkg/redis"
	"ratio-analytics-website/pkg/security"
	"ratio-analytics-website/pkg/validation"
)

// @title           Ratio Analytics Website API
// @version         1.0
// @description     Contact and newsletter forms of the Ratio Analytics website.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(!cfg.IsProduction())
	logger.Log.Info("Starting website backend", "port", cfg.Port, "delivery", cfg.ContactDelivery)

	secLogger := security.InitSecurityLogger("ratio-analytics-website", security.EnvironmentLabel(cfg.GinMode))
	defer func() { _ = secLogger.Sync() }()

	// 3. Setup Redis (rate limiting falls back to memory without it)
	if err := redis.Initialize(redis.Config{
		URL:      cfg.UpstashRedisURL,
		Password: cfg.UpstashRedisPassword,
	}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
	}
	defer redis.Close()

	// 4. Setup Mailer
	var mailer usecase.Mailer
	switch cfg.ContactDelivery {
	case config.DeliverySMTP:
		emailService := email.NewEmailService(cfg)
		if !emailService.IsConfigured() {
			logger.Log.Warn("Email service not fully configured - contact form will be unavailable")
		}
		mailer = emailService
	default:
		mailer = email.NewLogMailer(logger.Log, cfg.SimulatedDelay)
	}

	// 5. Setup UseCases
	contactUC := usecase.NewContactUsecase(mailer, validation.New())
	healthUC := usecase.NewHealthUsecase(cfg.ContactDelivery, redis.HealthCheck)

	// 6. Setup Router
	deps := v1.RouterDeps{
		ContactUC: contactUC,
		HealthUC:  healthUC,
		Config:    cfg,
	}
	if cfg.ContactEndpoint != "" {
		logger.Log.Info("Contact page posts to upstream endpoint", "endpoint", cfg.ContactEndpoint)
		deps.ContactTransport = transport.NewHTTPTransport(cfg.ContactEndpoint)
	}
	router := v1.NewRouter(deps)

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SubmitTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
