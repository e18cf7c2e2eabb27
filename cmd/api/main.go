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
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"

	httpAdapter "github.com/lorrc/studyspace-backend/internal/adapters/primary/http"
	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/studyspace-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/studyspace-backend/internal/adapters/secondary/backplane"
	"github.com/lorrc/studyspace-backend/internal/adapters/secondary/postgres"
	"github.com/lorrc/studyspace-backend/internal/auth"
	"github.com/lorrc/studyspace-backend/internal/config"
	"github.com/lorrc/studyspace-backend/internal/core/services"
	"github.com/lorrc/studyspace-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"instance_id", cfg.Realtime.InstanceID,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Initialize Database Pool
	if cfg.Database.MigrationsPath != "" {
		version, err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath)
		if err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("database schema up to date", "version", version)
	}

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connection established")

	// 4. Realtime: hub, fan-out router and optional backplane
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(cfg.Realtime.HubQueueSize, logger)
	go hub.Run(ctx)

	realtime := services.NewRealtimeRouter(logger)

	var natsConn *nats.Conn
	if cfg.Realtime.BackplaneEnabled() {
		bpCfg := backplane.Config{
			URL:           cfg.Realtime.BackplaneURL,
			Subject:       cfg.Realtime.BackplaneSubject,
			InstanceID:    cfg.Realtime.InstanceID,
			MaxReconnects: cfg.Realtime.BackplaneMaxRetries,
			ReconnectWait: cfg.Realtime.BackplaneRetryWait,
			DialTimeout:   cfg.Realtime.BackplaneDialTimeout,
		}

		natsConn, err = backplane.Connect(bpCfg, logger)
		if err != nil {
			logger.Error("failed to connect to backplane", "error", err)
			os.Exit(1)
		}

		relay := backplane.NewRelay(hub, backplane.NewNATSBus(natsConn), bpCfg, logger)
		if err := relay.Start(ctx); err != nil {
			logger.Error("failed to start backplane relay", "error", err)
			os.Exit(1)
		}
		realtime.SetServer(relay)
		logger.Info("realtime backplane enabled", "subject", bpCfg.Subject)
	} else {
		realtime.SetServer(hub)
	}

	// 5. Initialize Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(ctx, mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
	}

	// 6. Dependency Injection (Wiring the Hexagon)
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Repositories (Secondary Adapters)
	libraryRepo := postgres.NewLibraryRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	seatRepo := postgres.NewSeatRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	txManager := postgres.NewTransactionManager(pool)

	// Services (Core)
	libraryService := services.NewLibraryService(libraryRepo, realtime, services.WithLibraryTransactor(txManager))
	bookingService := services.NewBookingService(bookingRepo, libraryRepo, realtime, services.WithTransactor(txManager))
	seatService := services.NewSeatService(seatRepo, realtime)
	notificationService := services.NewNotificationService(notificationRepo, realtime)

	// Handlers (Primary Adapters)
	bookingHandler := httpAdapter.NewBookingHandler(bookingService, errorHandler, logger)
	seatHandler := httpAdapter.NewSeatHandler(seatService, errorHandler, logger)
	libraryHandler := httpAdapter.NewLibraryHandler(libraryService, seatHandler, bookingHandler, errorHandler, logger)
	notificationHandler := httpAdapter.NewNotificationHandler(notificationService, errorHandler, logger)
	realtimeHandler := httpAdapter.NewRealtimeHandler(realtime, errorHandler, logger)
	meHandler := httpAdapter.NewMeHandler(errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, realtime, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           cfg.HTTP.CORSMaxAge,
	}))
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))

	if rateLimiter != nil {
		r.Use(rateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	healthHandler.RegisterRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		// Authentication is handled inside the handler
		r.Get("/ws", wsHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Route("/libraries", libraryHandler.RegisterRoutes)
			r.Route("/bookings", bookingHandler.RegisterRoutes)
			r.Route("/notifications", notificationHandler.RegisterRoutes)
			r.Route("/realtime", realtimeHandler.RegisterRoutes)
			r.Route("/me", meHandler.RegisterRoutes)
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Emits after this point are dropped by the router.
	realtime.SetServer(nil)
	stop()

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn("backplane drain failed", "error", err)
		}
	}

	logger.Info("server shutdown complete")
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
