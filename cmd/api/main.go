package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/background"
	"github.com/mbnr/matrimonial/internal/config"
	"github.com/mbnr/matrimonial/internal/database"
	"github.com/mbnr/matrimonial/internal/events"
	"github.com/mbnr/matrimonial/internal/handlers"
	middlewareCustom "github.com/mbnr/matrimonial/internal/middleware"
	"github.com/mbnr/matrimonial/internal/notify"
	"github.com/mbnr/matrimonial/internal/qrcode"
	"github.com/mbnr/matrimonial/internal/repositories"
	"github.com/mbnr/matrimonial/internal/routes"
	"github.com/mbnr/matrimonial/internal/services"
	"github.com/mbnr/matrimonial/migrations"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
	pkglogger "github.com/mbnr/matrimonial/pkg/logger"
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

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		logger.Warn("unknown LOG_LEVEL, using info", slog.String("log_level", cfg.Server.LogLevel))
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), time.Minute)
	err = db.Migrate(migrateCtx, migrations.FS)
	migrateCancel()
	if err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	revokeRepo := repositories.NewTokenRevocationRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	connectionRepo := repositories.NewConnectionRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	agentRepo := repositories.NewAgentRepository(db)

	// Outbound side effects
	notifier := newNotifier(cfg, logger)
	publisher := newPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", slog.Any("error", err))
		}
	}()
	qrGenerator := qrcode.NewGenerator(cfg.Email.AppBaseURL, cfg.QRCode.Size, cfg.QRCode.RecoveryLevel)

	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	auditLogger := pkglogger.NewAuditLogger(logger)
	ipResolver := pkghttp.NewIPResolver(cfg.Server.TrustedProxies)

	// Initialize services
	userService := services.NewUserService(userRepo, logger)
	authService := services.NewAuthService(userRepo, tokenManager, revokeRepo, logger, auditLogger)
	profileService := services.NewProfileService(profileRepo, logger)
	connectionService := services.NewConnectionService(connectionRepo, userRepo, notifier, publisher, logger)
	verificationService := services.NewVerificationService(verificationRepo, userRepo, notifier, publisher, logger, auditLogger)
	agentService := services.NewAgentService(agentRepo, userRepo, profileRepo, qrGenerator, publisher, logger, auditLogger)

	// Bootstrap first admin user if configured
	if cfg.Bootstrap.AdminEmail != "" && cfg.Bootstrap.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, "Admin"); err != nil {
			logger.Error("failed to ensure admin user", slog.Any("error", err))
		}
		cancel()
	}

	// Initialize handlers
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, ipResolver),
		Users:        handlers.NewUserHandler(userService),
		Profiles:     handlers.NewProfileHandler(profileService),
		Connections:  handlers.NewConnectionHandler(connectionService),
		Verification: handlers.NewVerificationHandler(verificationService),
		Agents:       handlers.NewAgentHandler(agentService),
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipResolver))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/health", handlers.Health(db))
	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, h, tokenManager, userRepo, revokeRepo, ipResolver, routes.Limits{
			AuthPerMinute:  cfg.RateLimit.AuthPerMinute,
			WritePerMinute: cfg.RateLimit.WritePerMinute,
		}, logger)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupManager := background.NewCleanupManager(revokeRepo, logger, cfg.Auth.CleanupInterval)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		return
	}

	logger.Info("server stopped gracefully")
}

// newNotifier returns the SES notifier when e-mail is enabled and a logging
// notifier otherwise or when SES cannot be configured.
func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	if !cfg.Email.Enabled {
		logger.Info("email disabled, notifications will be logged")
		return notify.NewLogNotifier(logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sesNotifier, err := notify.NewSESNotifier(ctx, cfg.Email.AWSRegion, cfg.Email.FromAddress, cfg.Email.AppBaseURL, logger)
	if err != nil {
		logger.Error("failed to initialize SES, notifications will be logged", slog.Any("error", err))
		return notify.NewLogNotifier(logger)
	}
	return sesNotifier
}

// newPublisher connects to NATS when NATS_URL is set. Events are dropped otherwise.
func newPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.Events.NATSURL == "" {
		logger.Info("NATS_URL not set, domain events disabled")
		return events.NopPublisher{}
	}

	pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
	if err != nil {
		logger.Error("failed to connect to NATS, domain events disabled", slog.Any("error", err))
		return events.NopPublisher{}
	}
	return pub
}
