package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutrilife/campus/api/internal/config"
	"github.com/nutrilife/campus/api/internal/database"
	"github.com/nutrilife/campus/api/internal/handler"
	"github.com/nutrilife/campus/api/internal/mail"
	"github.com/nutrilife/campus/api/internal/middleware"
	"github.com/nutrilife/campus/api/internal/repository"
	"github.com/nutrilife/campus/api/internal/service"
	"github.com/nutrilife/campus/api/internal/trigger"
	"github.com/nutrilife/campus/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT validation
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize mailer
	mailer := mail.NewSendGrid(mail.Config{
		APIKey:      cfg.Mail.SendGridAPIKey,
		SenderEmail: cfg.Mail.SenderEmail,
		SenderName:  cfg.Mail.SenderName,
	})
	if !mailer.Enabled() {
		slog.Warn("mailer not configured, notifications will be skipped")
	}

	// Initialize repositories
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)

	// Initialize services
	allocationService := service.NewAllocationService(service.AllocationServiceConfig{
		Events:        eventRepo,
		Registrations: registrationRepo,
	})

	lifecycleService := service.NewLifecycleService(service.LifecycleServiceConfig{
		Allocation:    allocationService,
		Events:        eventRepo,
		Registrations: registrationRepo,
		Mailer:        mailer,
		Timezone:      cfg.Timezone(),
		SenderName:    cfg.Mail.SenderName,
	})

	// Trigger bus drives the registration lifecycle asynchronously
	bus := trigger.NewBus(trigger.Config{
		Handler:     lifecycleService,
		Workers:     cfg.Trigger.Workers,
		QueueSize:   cfg.Trigger.QueueSize,
		MaxAttempts: cfg.Trigger.MaxAttempts,
		Timeout:     cfg.Trigger.Timeout,
	})
	bus.Start()
	defer bus.Stop()

	registrationService := service.NewRegistrationService(service.RegistrationServiceConfig{
		Registrations: registrationRepo,
		Triggers:      bus,
	})

	eventService := service.NewEventService(eventRepo)
	recipeService := service.NewRecipeService(recipeRepo)

	reminderService := service.NewReminderService(service.ReminderServiceConfig{
		Events:        eventRepo,
		Registrations: registrationRepo,
		Mailer:        mailer,
		Timezone:      cfg.Timezone(),
		SenderName:    cfg.Mail.SenderName,
	})

	// Initialize handlers
	eventHandler := handler.NewEventHandler(eventService)
	registrationHandler := handler.NewRegistrationHandler(registrationService)
	recipeHandler := handler.NewRecipeHandler(recipeService)
	reminderHandler := handler.NewReminderHandler(reminderService)

	// Idempotency store for registration writes
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{})

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", handler.Health)

	apiKey := middleware.APIKey(cfg.API.Key)
	authMiddleware := middleware.Auth(jwtService)
	idempotency := middleware.Idempotency(idempotencyStore)

	// Public read endpoints (API key)
	mux.Handle("GET /v1/events", apiKey(http.HandlerFunc(eventHandler.List)))
	mux.Handle("GET /v1/recipes", apiKey(http.HandlerFunc(recipeHandler.List)))

	// Registration endpoints (API key, idempotent writes)
	mux.Handle("POST /v1/events/{eventId}/registrations",
		apiKey(idempotency(http.HandlerFunc(registrationHandler.Register))))
	mux.Handle("DELETE /v1/events/{eventId}/registrations/{userId}",
		apiKey(http.HandlerFunc(registrationHandler.Deregister)))

	// Rating endpoint (auth required)
	mux.Handle("POST /v1/recipes/{recipeId}/ratings",
		authMiddleware(http.HandlerFunc(recipeHandler.Rate)))

	// Admin endpoints (auth required)
	mux.Handle("POST /v1/admin/events/{eventId}/reminders",
		authMiddleware(http.HandlerFunc(reminderHandler.Send)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
