package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"botregistry/internal/auth"
	"botregistry/internal/platform/config"
	"botregistry/internal/platform/httpserver"
	"botregistry/internal/platform/logger"
	"botregistry/internal/platform/metrics"
	platformredis "botregistry/internal/platform/redis"
	"botregistry/internal/registry/handler"
	"botregistry/internal/registry/service"
	"botregistry/internal/registry/store"
	"botregistry/internal/registry/store/institution"
	"botregistry/internal/registry/store/participant"
	"botregistry/pkg/platform/middleware/apikey"
)

// main wires configuration, stores, auth, and the two HTTP servers. Business
// logic lives under internal/registry.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "botregistry: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		instStore service.InstitutionStore
		partStore service.ParticipantStore
	)
	if cfg.DSN == "" {
		log.Info("using in-memory stores")
		instStore = institution.NewInMemory()
		partStore = participant.NewInMemory()
	} else {
		pool, err := store.Connect(ctx, cfg.DSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := store.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("using postgres stores")
		instStore = institution.NewPostgres(pool)
		partStore = participant.NewPostgres(pool)
	}

	m := metrics.New()
	svc := service.New(instStore, partStore,
		service.WithLogger(log),
		service.WithMetrics(m),
	)

	var provider auth.ClaimsProvider = auth.NewChainProvider(
		auth.NewAdminKeyProvider(cfg.AdminAPIKey),
		auth.NewParticipantProvider(partStore),
	)
	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		log.Info("caching identities in redis", "ttl", cfg.IdentityCacheTTL)
		provider = auth.NewCachedProvider(provider, rdb.Client, cfg.IdentityCacheTTL, log)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Handler:  handler.New(svc, log),
		Provider: provider,
		Logger:   log,
		Failures: m,
		Auth:     apikey.Config{Header: cfg.AuthHeader, Scheme: cfg.AuthScheme},
	})

	apiSrv := httpserver.New(cfg.Addr, router)
	metricsSrv := httpserver.New(cfg.MetricsAddr, promhttp.Handler())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("registry listening", "addr", cfg.Addr)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics listening", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
