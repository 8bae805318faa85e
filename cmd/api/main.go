package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stationops/forecourt/internal/auth"
	"github.com/stationops/forecourt/internal/background"
	"github.com/stationops/forecourt/internal/config"
	"github.com/stationops/forecourt/internal/database"
	"github.com/stationops/forecourt/internal/handlers"
	middlewareCustom "github.com/stationops/forecourt/internal/middleware"
	"github.com/stationops/forecourt/internal/models"
	"github.com/stationops/forecourt/internal/repositories"
	"github.com/stationops/forecourt/internal/routes"
	"github.com/stationops/forecourt/internal/services"
	pkgauth "github.com/stationops/forecourt/pkg/auth"
	pkglogger "github.com/stationops/forecourt/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	logRepo := repositories.NewLogRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	userRepo := repositories.NewUserRepository(db)
	stationRepo := repositories.NewStationRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	eventRepo := repositories.NewSecurityEventRepository(db)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionExpiry)

	// Audit logging over the structured logger
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Notification sink for triggered alerts
	sink := buildNotificationSink(&cfg.Notifier, logger)

	// Initialize services
	policyService := services.NewPolicyService(settingsRepo, logger)
	lockoutService := services.NewLockoutService(userRepo, eventRepo, cfg.Auth.MasterIdentity, logger, auditLogger)
	alertService := services.NewAlertService(alertRepo, stationRepo, eventRepo, sink, logger, auditLogger)
	logService := services.NewLogService(logRepo, policyService, alertService, logger)
	authService := services.NewAuthService(userRepo, lockoutService, policyService, tokenManager, eventRepo, logger, auditLogger)
	userAdminService := services.NewUserAdminService(userRepo, lockoutService, eventRepo, logger, auditLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	logHandler := handlers.NewLogHandler(logService)
	alertHandler := handlers.NewAlertHandler(alertService)
	settingsHandler := handlers.NewSettingsHandler(policyService)
	userHandler := handlers.NewUserHandler(userAdminService)
	stationHandler := handlers.NewStationHandler(stationRepo)
	eventHandler := handlers.NewSecurityEventHandler(eventRepo)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(
		alertRepo, lockoutService, policyService, logger,
		cfg.Auth.CleanupInterval, cfg.Auth.AlertRetention,
	)

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(cfg.Server.Env))
	router.Use(middlewareCustom.CORS(cfg.Server.AllowedOrigins))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, logHandler, alertHandler,
		settingsHandler, userHandler, stationHandler, eventHandler, tokenManager)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// buildNotificationSink picks the alert delivery channel from configuration.
// Delivery is best effort, so a misconfigured sink degrades to noop rather
// than stopping the server.
func buildNotificationSink(cfg *config.NotifierConfig, logger *slog.Logger) services.NotificationSink {
	switch cfg.Mode {
	case "webhook":
		if cfg.WebhookURL == "" {
			logger.Warn("webhook notifier selected but NOTIFIER_WEBHOOK_URL is empty, alerts will not be delivered")
		}
		return services.NewWebhookSink(cfg.WebhookURL, cfg.Timeout, logger)
	case "ses":
		sink, err := services.NewSESNotificationSink(cfg.AWSRegion, cfg.FromAddress, cfg.ToAddress, logger)
		if err != nil {
			logger.Error("failed to initialize SES notifier, alerts will not be delivered", slog.Any("error", err))
			return services.NoopSink{}
		}
		return sink
	default:
		logger.Info("alert notification delivery disabled", slog.String("mode", cfg.Mode))
		return services.NoopSink{}
	}
}

// ensureAdminUser creates the first admin user if ADMIN_USERNAME and
// ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminPassword == "" {
		logger.Info("no ADMIN_USERNAME or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := userRepo.GetByUsername(ctx, adminUsername)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	// Hash password
	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	// Create admin user
	now := time.Now()
	admin := &models.UserAccount{
		Username:          adminUsername,
		PasswordHash:      hashedPassword,
		Role:              models.RoleAdmin,
		PasswordChangedAt: &now,
	}

	_, err = userRepo.Create(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
