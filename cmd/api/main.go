package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/config"
	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/handler"
	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/dafibh/fortuna/ledger-backend/internal/remote"
	"github.com/dafibh/fortuna/ledger-backend/internal/repository/memory"
	"github.com/dafibh/fortuna/ledger-backend/internal/repository/postgres"
	"github.com/dafibh/fortuna/ledger-backend/internal/repository/storage"
	"github.com/dafibh/fortuna/ledger-backend/internal/service"
	"github.com/dafibh/fortuna/ledger-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// @title Fortuna Ledger API
// @version 1.0
// @description Monthly budget ledger with debounced sync to the remote dashboard store.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize the ledger store
	var (
		store        domain.DashboardStore
		history      domain.TransactionHistoryReader
		settingsRepo domain.SettingsRepository
		authProxy    handler.AuthProxy
	)
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		if err := postgres.RunMigrations(pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		log.Info().Msg("Connected to database")

		store = postgres.NewDashboardRepository(pool)
		history = postgres.NewTransactionRepository(pool)
		settingsRepo = postgres.NewSettingsRepository(pool)
	default:
		client := remote.NewClient(cfg.RemoteAPIURL, cfg.RemoteTimeout)
		store = client
		history = client
		authProxy = client
		settingsRepo = memory.NewSettingsRepository()
		log.Info().Str("url", cfg.RemoteAPIURL).Msg("Using remote dashboard store")
	}

	// Initialize token validation
	var validator middleware.TokenValidator
	switch cfg.AuthMode {
	case config.AuthModeHS256:
		validator, err = middleware.NewHMACValidator(cfg.JWTSecret)
	default:
		validator, err = middleware.NewAuth0Validator(cfg.Auth0Domain, cfg.Auth0Audience)
	}
	if err != nil {
		log.Fatal().Err(err).Str("mode", cfg.AuthMode).Msg("Failed to create token validator")
	}
	authMiddleware := middleware.NewAuthMiddleware(validator)

	// Initialize WebSocket hub
	hub := websocket.NewHub()

	// Initialize sessions
	sessions := service.NewSessionManager(store, history, log.Logger, service.SessionConfig{
		SaveDelay:   cfg.SaveDebounce,
		SaveTimeout: cfg.SaveTimeout,
		LoadTimeout: cfg.RemoteTimeout,
		IdleTTL:     cfg.SessionIdleTTL,
	})
	sessions.SetEventPublisher(hub)

	reaper := service.NewSessionReaper(sessions, log.Logger, service.SessionReaperConfig{IdleTTL: cfg.SessionIdleTTL})
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	reaper.Start(reaperCtx)

	// Initialize object storage for exports
	var objectStore storage.ObjectStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3ObjectStore(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		objectStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Snapshot export enabled")
	}

	// Initialize services
	ledgerService := service.NewLedgerService(sessions)
	settingsService := service.NewSettingsService(settingsRepo)
	settingsService.SetEventPublisher(hub)
	exportService := service.NewExportService(ledgerService, objectStore, cfg.S3.URLExpiry)

	// Initialize handlers
	handlers := handler.Handlers{
		Dashboard: handler.NewDashboardHandler(ledgerService),
		Budget:    handler.NewBudgetHandler(ledgerService),
		Expense:   handler.NewExpenseHandler(ledgerService),
		Session:   handler.NewSessionHandler(ledgerService),
		Settings:  handler.NewSettingsHandler(settingsService),
		WebSocket: handler.NewWebSocketHandler(hub, validator, ledgerService, cfg.CORSOrigins),
	}
	if authProxy != nil {
		handlers.Auth = handler.NewAuthHandler(authProxy)
	}
	if exportService.IsEnabled() {
		handlers.Export = handler.NewExportHandler(exportService)
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "ok",
			"store":    cfg.StoreBackend,
			"sessions": sessions.Count(),
			"clients":  hub.TotalClientCount(),
		})
	})

	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", handler.NewOpenAPI3Handler(handler.DefaultServers(cfg.Port)))

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SaveTimeout+5*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Unsaved ledgers are written before the process exits
	reaper.Stop()
	if err := sessions.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Some sessions could not be saved")
	}
	log.Info().Int("sockets", hub.CloseAll()).Msg("WebSocket clients closed")

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Warn()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
