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

	"locallibrary/pkg/aggregate"
	"locallibrary/pkg/catalog"
	"locallibrary/pkg/circuitbreaker"
	"locallibrary/pkg/config"
	"locallibrary/pkg/database"
	"locallibrary/pkg/forms"
	"locallibrary/pkg/logger"
	"locallibrary/pkg/metrics"
	"locallibrary/pkg/store"
	"locallibrary/pkg/web"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Format:      cfg.Log.Format,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Log.Level),
	})
	log.Info("starting catalog service", "environment", cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get database instance: %w", err)
	}
	defer sqlDB.Close()

	st := store.New(db)
	svc, m := buildService(cfg, st, log)

	if cfg.Catalog.Seed {
		if err := seedCatalog(ctx, st, svc.Now(), log); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := web.NewRouter(web.Deps{
		Service: svc,
		Logger:  log,
		DB:      st,
		Breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:        "catalog-database",
			MaxFailures: 3,
			Window:      30 * time.Second,
			Cooldown:    10 * time.Second,
		}, log),
		Metrics: m,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("catalog service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down catalog service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("catalog service stopped")
	return nil
}

func buildService(cfg *config.Config, st *store.Store, log *slog.Logger) (*catalog.Service, *metrics.Metrics) {
	m := metrics.New()
	fetcher := aggregate.NewFetcher(
		aggregate.WithTimeout(cfg.Catalog.LookupTimeout),
		aggregate.WithObserver(m),
	)
	return catalog.NewService(st, fetcher, forms.NewPipeline(), log), m
}
