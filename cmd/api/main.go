package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/guidari-center/guidari-backend/config"
	"github.com/guidari-center/guidari-backend/internal/auth"
	"github.com/guidari-center/guidari-backend/internal/bootstrap"
	"github.com/guidari-center/guidari-backend/internal/clinic/billing"
	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
	"github.com/guidari-center/guidari-backend/internal/remote"
	"github.com/guidari-center/guidari-backend/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	logger, err := bootstrap.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat, "guidari-api")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := bootstrap.OpenRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	settingsStore := settings.NewStore(rdb, settings.RemoteCredentials{
		URL: cfg.Remote.URL,
		Key: cfg.Remote.Key,
	})

	deps := bootstrap.RouterDeps{
		ServiceName:    "guidari-api",
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.CORSOrigins,
		Settings:       settingsStore,
		Basis:          billing.LiabilityBasis(cfg.Finance.LiabilityBasis),
		Redis:          rdb,
		Logger:         logger,
	}

	var store remote.RowStore
	switch cfg.Remote.Mode {
	case "postgres":
		db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Remote.DSN})
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer db.Close()
		deps.DB = db
		store = remote.NewSQLStore(db, logger)
	default:
		creds := settingsStore.Remote(ctx)
		store = remote.NewRESTStore(creds.URL, creds.Key, logger)
	}

	seed := domain.SeedRoster(domain.SeedAdmin{
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
		PIN:      cfg.Auth.AdminPIN,
		Name:     cfg.Auth.AdminName,
	})
	synchronizer := clinicsync.New(store, seed, logger)
	deps.Sync = synchronizer
	deps.Auth = auth.NewService(synchronizer, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)

	// Initial load. Failures are survivable: collections stay on local data
	// until the scheduler or a manual refresh succeeds.
	loadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	if err := synchronizer.RefreshAll(loadCtx); err != nil {
		logger.Warn("initial refresh incomplete", zap.Error(err))
	}
	cancel()

	scheduler := clinicsync.NewScheduler(synchronizer, logger)
	if err := scheduler.Start(cfg.Sync.RefreshInterval); err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           bootstrap.BuildRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShut()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
