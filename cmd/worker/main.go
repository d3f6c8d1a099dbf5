// The worker keeps a deployment's remote store fresh without serving the API:
// it runs the same scheduled refresh loop headless, exposing only a health
// and a status endpoint for monitoring.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/guidari-center/guidari-backend/config"
	"github.com/guidari-center/guidari-backend/internal/bootstrap"
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

	logger, err := bootstrap.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat, "guidari-worker")
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

	var store remote.RowStore
	switch cfg.Remote.Mode {
	case "postgres":
		db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Remote.DSN})
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer db.Close()
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

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"states": synchronizer.States(),
			"logs":   synchronizer.Log(),
		})
	}).Methods("GET")

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("worker listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("worker shutting down")

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
