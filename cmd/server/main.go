package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"catatkas/backend/internal/cache"
	"catatkas/backend/internal/config"
	"catatkas/backend/internal/httpapi"
	"catatkas/backend/internal/logger"
	"catatkas/backend/internal/repository"
	"catatkas/backend/internal/service"
	"catatkas/backend/internal/store"
	"catatkas/backend/internal/store/memory"
	"catatkas/backend/internal/store/sqlstore"
)

// backend is what a store driver must provide: tenant documents and accounts.
type backend interface {
	store.DocumentStore
	store.UserStore
}

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalw("invalid security configuration", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}
	loc, _ := cfg.Location()

	ctx, cancel := context.WithTimeout(logger.WithLogger(context.Background(), log), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	docs, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalw("store unavailable; refusing to start with in-memory fallback", "driver", cfg.StoreDriver, "error", err)
	}
	closers = append(closers, docs.Close)
	log.Infow("store ready", "driver", cfg.StoreDriver)

	summaries := cache.SummaryCache(cache.NoopSummaryCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSummaryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warnw("redis unavailable, using noop summary cache", "error", err)
		} else {
			summaries = redisCache
			closers = append(closers, redisCache.Close)
			log.Infow("summary cache: redis", "addr", cfg.RedisAddr)
		}
	} else {
		log.Infow("summary cache: noop")
	}

	svc := service.New(repository.New(docs), summaries, service.Options{
		Location:          loc,
		LowStockThreshold: cfg.LowStockThreshold,
		SummaryTTL:        time.Duration(cfg.SummaryCacheTTLSeconds) * time.Second,
	})
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, docs)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin, log)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infow("catatkas backend listening", "addr", cfg.Address(), "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("shutdown error", "error", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warnw("close error", "error", err)
		}
	}

	log.Infow("server stopped")
}

func openBackend(ctx context.Context, cfg config.Config) (backend, error) {
	var driver, dsn string
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StorePostgres:
		driver, dsn = sqlstore.DriverPostgres, cfg.DatabaseURL
	case config.StoreSQLite:
		driver, dsn = sqlstore.DriverSQLite, cfg.SQLitePath
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	db, err := sqlstore.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if err := validateSecretStrength(cfg.AuthSecret); err != nil {
		return fmt.Errorf("AUTH_SECRET is too weak: %w", err)
	}
	return nil
}

// validateSecretStrength rejects secrets built from a single repeated
// character or from too few distinct characters.
func validateSecretStrength(secret string) error {
	distinct := make(map[rune]struct{})
	for _, r := range secret {
		distinct[r] = struct{}{}
	}
	if len(distinct) == 1 {
		return fmt.Errorf("all-same-character secret not allowed")
	}
	if len(distinct) < 8 {
		return fmt.Errorf("secret needs at least 8 distinct characters")
	}
	return nil
}
