package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"estate_hub/internal/adapters/feed"
	"estate_hub/internal/adapters/observability"
	"estate_hub/internal/app"
	"estate_hub/internal/shared"
	"estate_hub/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if cfg.FeedBaseURL == "" || cfg.ImportOwner == "" {
		log.Fatal().Msg("FEED_BASE_URL and IMPORT_OWNER_ID are required")
	}
	log.Info().
		Str("feed", cfg.FeedBaseURL).
		Str("owner", cfg.ImportOwner).
		Int("workers", cfg.ImportWorker).
		Msg("importer starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	defer func() { _ = repos.Close(context.Background()) }()

	client, err := feed.New(cfg.FeedBaseURL, cfg.FeedKey, cfg.FeedRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize feed client")
	}

	// no cache: the API process owns cached views and they expire on their own
	orgSvc := app.NewOrganizationService(repos.Organizations)
	propSvc := app.NewPropertyService(repos.Properties, orgSvc, nil, cfg.CacheTTL)
	imp := app.NewImporter(propSvc, cfg.ImportWorker)

	reg := observability.InitRegistry()
	rep, err := imp.Run(ctx, client, app.Actor{UserID: cfg.ImportOwner, Email: cfg.ImportEmail})
	observability.ObserveImport(rep.Created, rep.Published, rep.Failed)
	if perr := observability.Push(cfg.PushGateway, "estate_importer", reg); perr != nil {
		log.Warn().Err(perr).Msg("metrics push failed")
	}

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Int("seen", rep.Seen).
		Int("created", rep.Created).
		Int("published", rep.Published).
		Int("failed", rep.Failed).
		Msg("import finished")
}
