// Command clix runs the portal API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Shingunhoon/Clix/pkg/auth"
	"github.com/Shingunhoon/Clix/pkg/config"
	"github.com/Shingunhoon/Clix/pkg/identity"
	"github.com/Shingunhoon/Clix/pkg/limiter"
	"github.com/Shingunhoon/Clix/pkg/observability"
	"github.com/Shingunhoon/Clix/pkg/search"
	"github.com/Shingunhoon/Clix/pkg/server"
	"github.com/Shingunhoon/Clix/pkg/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	log.Info("store ready", "backend", cfg.Backend)

	keys, err := identity.NewInMemoryKeySet()
	if err != nil {
		return err
	}

	var limits limiter.Store
	if cfg.RedisAddr != "" {
		limits = limiter.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		log.Info("rate limiter backed by redis", "addr", cfg.RedisAddr)
	} else {
		limits = limiter.NewLocalStore()
	}

	idx, err := search.Open(st.Posts())
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()
	if err := idx.Rebuild(ctx); err != nil {
		log.Warn("initial index build failed", "error", err)
	}

	var obs *observability.Provider
	if cfg.TelemetryEnabled {
		obsCfg := observability.DefaultConfig()
		obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
		obs, err = observability.New(ctx, obsCfg)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obs.Shutdown(shutdownCtx)
		}()
	}

	srv := server.New(cfg, st, log, server.Options{
		Validator: auth.NewJWTValidator(keys),
		Limiter:   limits,
		Search:    idx,
		Obs:       obs,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := os.Getenv("CLIX_CONFIG"); path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Load()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Backend {
	case "firestore":
		return store.NewFirestoreStore(ctx, cfg.FirestoreProject)
	case "sqlite":
		return store.OpenSQLite(cfg.SQLitePath)
	default:
		return store.NewMemoryStore(), nil
	}
}
