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

	"github.com/rediwater/rediwater/internal/app"
	"github.com/rediwater/rediwater/internal/auth"
	"github.com/rediwater/rediwater/internal/boreholes"
	"github.com/rediwater/rediwater/internal/dashboard"
	"github.com/rediwater/rediwater/internal/observability"
	"github.com/rediwater/rediwater/internal/platform/cache"
	"github.com/rediwater/rediwater/internal/platform/db"
	"github.com/rediwater/rediwater/internal/rbac"
	"github.com/rediwater/rediwater/internal/readings"
	"github.com/rediwater/rediwater/internal/shared"
	"github.com/rediwater/rediwater/internal/sites"
	"github.com/rediwater/rediwater/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop); err != nil {
		slog.Default().Error("rediwater exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, stop context.CancelFunc) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	// A hole in the action table would silently deny a route; refuse to start.
	if err := rbac.VerifyActionTable(); err != nil {
		return err
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		return err
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookieName, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	var tokens *auth.TokenVerifier
	if cfg.BearerEnabled() {
		tokens = auth.NewTokenVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, cfg.AuthJWTAudience)
	} else {
		logger.Info("bearer tokens disabled, AUTH_JWT_SECRET not set")
	}
	authenticator := auth.Authenticator{Tokens: tokens, Logger: logger}

	usersRepo := users.NewRepository(dbpool)
	rbacMiddleware := rbac.Middleware{Roles: usersRepo, Logger: logger}

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	activityLog := shared.NewActivityLog(dbpool)
	// Dashboard caching is opt-in; with no TTL every request reads Postgres.
	var dashboardCache *dashboard.Cache
	if cfg.DashboardCacheTTL > 0 {
		dashboardCache = dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	}
	activity := dashboard.InvalidatingRecorder{Next: activityLog, Cache: dashboardCache}

	sitesService := sites.NewService(sites.NewRepository(dbpool), activity, logger)
	boreholesService := boreholes.NewService(boreholes.NewRepository(dbpool), activity, logger)
	readingsService := readings.NewService(readings.NewRepository(dbpool), activity, logger)
	usersService := users.NewService(usersRepo)
	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool, activityLog), dashboardCache, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Authenticator:      authenticator,
		AuthHandler:        authHandler,
		PermissionsHandler: rbac.NewPermissionsHandler(logger, rbacMiddleware),
		SitesHandler:       sites.NewHandler(logger, sitesService, rbacMiddleware),
		BoreholesHandler:   boreholes.NewHandler(logger, boreholesService, rbacMiddleware),
		ReadingsHandler:    readings.NewHandler(logger, readingsService, rbacMiddleware),
		UsersHandler:       users.NewHandler(logger, usersService, rbacMiddleware),
		DashboardHandler:   dashboard.NewHandler(logger, dashboardService, rbacMiddleware),
		Metrics:            metrics,
		Ready: func(r *http.Request) error {
			return errors.Join(dbpool.Ping(r.Context()), redisClient.Ping(r.Context()).Err())
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
