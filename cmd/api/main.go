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

	"github.com/vaultpass/keysmith-go/internal/config"
	"github.com/vaultpass/keysmith-go/internal/crypto"
	"github.com/vaultpass/keysmith-go/internal/entropy"
	"github.com/vaultpass/keysmith-go/internal/handler"
	"github.com/vaultpass/keysmith-go/internal/middleware"
	"github.com/vaultpass/keysmith-go/internal/repository"
	"github.com/vaultpass/keysmith-go/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := crypto.DefaultSource()

	entropyClient := entropy.NewClient(
		&http.Client{Timeout: cfg.EntropyTimeout},
		entropy.DefaultBreakerSettings(),
		"keysmith/1.0",
	)
	remote := entropy.NewGenerator(entropyClient, cfg.EntropyURL, entropy.WithTimeout(cfg.EntropyTimeout))

	deps := service.GeneratorDeps{
		Source:        src,
		Remote:        remote,
		DefaultAPIKey: cfg.EntropyAPIKey,
	}

	// Client registration and the audit log need the database; without it
	// only the public routes are served.
	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		if cfg.IsProduction() {
			slog.Error("connecting to database", "error", err)
			os.Exit(1)
		}
		slog.Warn("database unavailable, protected routes disabled", "error", err)
	} else {
		defer db.Close()
		if err := repository.EnsureSchema(ctx, db); err != nil {
			slog.Error("applying schema", "error", err)
			os.Exit(1)
		}
		deps.Recorder = repository.NewAuditRepository(db)
	}

	rt := routes{
		Generator: handler.NewGeneratorHandler(service.NewGeneratorService(deps)),
		Health:    handler.HandleHealth(entropyClient),
		Limiter:   middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst),
		JWTSecret: cfg.JWTSecret,
	}
	if db != nil {
		rt.Clients = handler.NewClientHandler(
			service.NewClientService(repository.NewClientRepository(db), src, cfg.JWTSecret, cfg.JWTExpiry),
		)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(rt),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
