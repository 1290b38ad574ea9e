package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlas-fam/atlas-fam/internal/app"
	"github.com/atlas-fam/atlas-fam/internal/assets"
	"github.com/atlas-fam/atlas-fam/internal/grn"
	"github.com/atlas-fam/atlas-fam/internal/intake"
	"github.com/atlas-fam/atlas-fam/internal/masterdata"
	"github.com/atlas-fam/atlas-fam/internal/observability"
	"github.com/atlas-fam/atlas-fam/internal/platform/cache"
	"github.com/atlas-fam/atlas-fam/internal/platform/db"
	"github.com/atlas-fam/atlas-fam/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// The resolver cache is an optimisation only; run without it when Redis
	// is unreachable.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, name cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	metrics := observability.NewMetrics()

	masterdataRepo := masterdata.NewRepository(pool)
	resolver := masterdata.NewResolver(masterdataRepo, redisClient, cfg.ResolverCacheTTL)
	masterdataHandler := masterdata.NewHandler(logger, masterdataRepo)

	grnRepo := grn.NewRepository(pool)
	grnService := grn.NewService(grnRepo, resolver, auditLogger, idempotencyStore)
	grnHandler := grn.NewHandler(logger, grnService, metrics)

	intakeRepo := intake.NewRepository(pool)
	intakeService := intake.NewService(intakeRepo, auditLogger)
	intakeHandler := intake.NewHandler(logger, intakeService)

	assetsRepo := assets.NewRepository(pool)
	assetsService := assets.NewService(assetsRepo, auditLogger)
	assetsHandler := assets.NewHandler(logger, assetsService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		GRNHandler:        grnHandler,
		IntakeHandler:     intakeHandler,
		AssetsHandler:     assetsHandler,
		MasterDataHandler: masterdataHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
