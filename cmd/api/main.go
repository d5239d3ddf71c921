package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "estate_hub/internal/adapters/http_server"
	"estate_hub/internal/adapters/observability"
	redisad "estate_hub/internal/adapters/redis"
	"estate_hub/internal/app"
	"estate_hub/internal/domain"
	"estate_hub/internal/shared"
	"estate_hub/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	defer func() { _ = repos.Close(context.Background()) }()

	// cache is optional; without REDIS_ADDR every read goes to storage
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable; continuing without cache")
		} else {
			defer func() { _ = rc.Close() }()
			cache = rc
		}
	}

	// deps
	orgSvc := app.NewOrganizationService(repos.Organizations)
	propSvc := app.NewPropertyService(repos.Properties, orgSvc, cache, cfg.CacheTTL)

	// http
	opts := server.Options{
		Timeout: cfg.RequestTimeout,
		Auth:    server.NewAuthenticator(cfg.JWTSecret),
	}
	if cfg.RateLimitRPS > 0 {
		opts.RateLimiter = server.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	srv := server.New(opts)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(server.NewHandlers(propSvc, orgSvc))

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(sctx)
	}
}
