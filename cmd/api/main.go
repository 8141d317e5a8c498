package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/notekeeper/backend/internal/auth"
	"github.com/notekeeper/backend/internal/config"
	httpx "github.com/notekeeper/backend/internal/http"
	"github.com/notekeeper/backend/internal/http/middlewares"
	"github.com/notekeeper/backend/internal/observability"
	"github.com/notekeeper/backend/internal/store"
	"github.com/notekeeper/backend/internal/store/file"
	"github.com/notekeeper/backend/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	// backend selection happens exactly once, before the first request
	ctx, cancel := config.WithTimeout(15 * time.Second)
	st := openStore(ctx, cfg, log)
	cancel()

	defer st.Close()

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry)
	authMiddleware := middlewares.NewAuthMiddleware(jwtManager)

	router := httpx.NewRouter(log, st, authMiddleware, jwtManager, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)

		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown: drain in-flight requests, then release the store
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openStore decides which medium backs the record store: Postgres when a
// connection descriptor is configured and both the connection and the schema
// bootstrap succeed, the local file store otherwise. The choice is never
// revisited while the process runs, so a relational backend that dies later
// surfaces errors instead of silently switching.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) store.Store {
	if cfg.DatabaseURL != "" {
		st, err := postgres.Open(ctx, cfg.DatabaseURL)

		if err == nil {
			log.Info("store backend selected", "backend", "postgres")
			return st
		}

		log.Warn("postgres unavailable, falling back to file storage", "err", err)
	}

	st, err := file.Open(cfg.DataDir, log)

	if err != nil {
		log.Error("could not open file store", "err", err)
		os.Exit(1)
	}

	log.Warn("store backend selected, data will not survive redeploys",
		"backend", "file",
		"dir", cfg.DataDir,
	)

	return st
}
