package app

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"estate_hub/internal/domain"
)

// ImportListing is one listing pulled from an external source.
type ImportListing struct {
	ExternalID string            `json:"externalId"`
	Publish    bool              `json:"publish"`
	Property   CreatePropertyDTO `json:"property"`
}

type ListingSource interface {
	Each(ctx context.Context, fn func(ImportListing) error) error
}

type ImportReport struct {
	Seen      int
	Created   int
	Published int
	Failed    int
}

// Importer files listings from a source on behalf of one actor, a bounded
// number at a time. Individual failures are counted, not fatal; running
// into the plan ceiling stops the run.
type Importer struct {
	props   *PropertyService
	v       *validator.Validate
	workers int64
}

func NewImporter(props *PropertyService, workers int) *Importer {
	if workers < 1 {
		workers = 1
	}
	return &Importer{props: props, v: validator.New(validator.WithRequiredStructEnabled()), workers: int64(workers)}
}

func (im *Importer) Run(ctx context.Context, src ListingSource, actor Actor) (ImportReport, error) {
	if actor.Anonymous() {
		return ImportReport{}, domain.Unauthorized("import listings")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		rep      ImportReport
		wg       sync.WaitGroup
		fatalErr error
	)
	sem := semaphore.NewWeighted(im.workers)

	err := src.Each(ctx, func(l ImportListing) error {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		mu.Lock()
		rep.Seen++
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			created, published, err := im.importOne(ctx, actor, l)
			mu.Lock()
			defer mu.Unlock()
			if created {
				rep.Created++
			}
			if published {
				rep.Published++
			}
			if err == nil {
				return
			}
			rep.Failed++
			log.Warn().Str("external_id", l.ExternalID).Err(err).Msg("import failed")
			if errors.Is(err, domain.ErrPlanLimitReached) && fatalErr == nil {
				fatalErr = err
				cancel()
			}
		}()
		return nil
	})
	wg.Wait()

	if fatalErr != nil {
		return rep, fatalErr
	}
	return rep, err
}

func (im *Importer) importOne(ctx context.Context, actor Actor, l ImportListing) (created, published bool, err error) {
	if err := im.v.Struct(l.Property); err != nil {
		return false, false, wrapValidation("import listing", errors.Join(domain.ErrValidation, err))
	}
	p, err := im.props.CreateProperty(ctx, actor, l.Property)
	if err != nil {
		return false, false, err
	}
	if !l.Publish {
		return true, false, nil
	}
	if _, err := im.props.PublishProperty(ctx, p.ID(), actor); err != nil {
		return true, false, err
	}
	return true, true, nil
}
