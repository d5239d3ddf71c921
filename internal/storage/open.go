// Package storage selects the repository implementation named by the
// configuration.
package storage

import (
	"context"

	"github.com/rs/zerolog/log"

	"estate_hub/internal/domain"
	"estate_hub/internal/shared"
	"estate_hub/internal/storage/memory"
	mongostore "estate_hub/internal/storage/mongo"
)

type Repos struct {
	Properties    domain.PropertyRepository
	Organizations domain.OrganizationRepository
	// Close releases the backing connection; safe to call once.
	Close func(ctx context.Context) error
}

func Open(ctx context.Context, cfg shared.Config) (Repos, error) {
	if cfg.StorageDriver == shared.DriverMemory {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return Repos{
			Properties:    memory.NewPropertyRepo(),
			Organizations: memory.NewOrganizationRepo(),
			Close:         func(context.Context) error { return nil },
		}, nil
	}

	store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return Repos{}, err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return Repos{}, err
	}
	log.Info().Str("db", cfg.MongoDatabase).Msg("database connection ok")
	return Repos{
		Properties:    store.Properties(),
		Organizations: store.Organizations(),
		Close:         store.Close,
	}, nil
}
