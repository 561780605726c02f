// Package main wires the application together and starts the HTTP server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventboard/config"
	"eventboard/internal/adapters/email"
	"eventboard/internal/adapters/stats"
	delivery "eventboard/internal/delivery/http"
	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/repository/postgres"
	"eventboard/internal/services"
)

const serviceTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Adapters
	views := stats.NewNoopViewCounter()
	if cfg.StatsURL != "" {
		views = stats.NewHTTPViewCounter(&http.Client{Timeout: 5 * time.Second}, cfg.StatsURL, "eventboard")
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	notifier := services.NewNotificationService(mailer, email.NewTemplateRenderer())

	// Services
	eventService := services.NewEventService(eventRepo, requestRepo, categoryRepo, userRepo, views, logger, serviceTimeout)
	requestService := services.NewRequestService(requestRepo, eventRepo, userRepo, notifier, logger, serviceTimeout)

	// Delivery
	eventController := controllers.NewEventController(logger, eventService)
	requestController := controllers.NewRequestController(logger, requestService)
	mux := delivery.NewRouter(eventController, requestController)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:     10,
		Burst:   20,
		IdleTTL: 10 * time.Minute,
	})
	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = middleware.CORS(corsOrigins(cfg.Environment), handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

func corsOrigins(env string) []string {
	if env == "production" {
		return []string{os.Getenv("CORS_ORIGIN")}
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}
