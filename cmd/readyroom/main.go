package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/clog"

	"readyroom/api"
	"readyroom/config"
	"readyroom/core/auth"
	"readyroom/core/ratelimit"
	"readyroom/core/seed"
	"readyroom/core/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(clog.New())
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		return err
	}

	verifier, err := auth.NewJWKSVerifier(ctx, cfg.Auth.Issuer(), cfg.Auth.Audience, cfg.Auth.JWKSURL())
	if err != nil {
		return err
	}

	checklists := store.NewChecklistsStore(db)
	incidents := store.NewIncidentsStore(db)
	audits := store.NewAuditStore(db)

	srv := api.NewServer(cfg, api.ServerDeps{
		Verifier:   verifier,
		Limiter:    ratelimit.NewWindowLimiter(cfg.Security.RateLimitPoints, cfg.Security.RateLimitWindow),
		Checklists: checklists,
		Incidents:  incidents,
		Audits:     audits,
		Seeder:     seed.NewSeeder(checklists, incidents, audits),
	}, logger)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
