package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"estate_hub/internal/app"
	"estate_hub/internal/domain"
	"estate_hub/internal/storage/memory"
)

type sliceSource []app.ImportListing

func (s sliceSource) Each(ctx context.Context, fn func(app.ImportListing) error) error {
	for _, l := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	return nil
}

func TestImporter_Run(t *testing.T) {
	s := newServices()
	ctx := context.Background()

	broken := validDTO("Broken")
	broken.Images = []string{"not a url"}
	src := sliceSource{
		{ExternalID: "x-1", Property: validDTO("Draft import")},
		{ExternalID: "x-2", Publish: true, Property: validDTO("Live import")},
		{ExternalID: "x-3", Property: broken},
	}

	rep, err := app.NewImporter(s.props, 2).Run(ctx, src, alice)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := app.ImportReport{Seen: 3, Created: 2, Published: 1, Failed: 1}
	if rep != want {
		t.Fatalf("report: got %+v want %+v", rep, want)
	}

	mine, _ := s.props.ListUserProperties(ctx, alice)
	if len(mine) != 2 {
		t.Fatalf("want 2 stored properties, got %d", len(mine))
	}
	pg, _ := s.props.GetProperties(ctx, app.GetPropertiesQuery{})
	if pg.Total != 1 || pg.Properties[0].Title() != "Live import" {
		t.Fatalf("public listing: total=%d", pg.Total)
	}
}

// slowCountRepo widens the window between counting and saving.
type slowCountRepo struct {
	*memory.PropertyRepo
}

func (r slowCountRepo) Count(ctx context.Context, f domain.PropertyFilters) (int64, error) {
	time.Sleep(5 * time.Millisecond)
	return r.PropertyRepo.Count(ctx, f)
}

func TestImporter_StopsAtPlanLimit(t *testing.T) {
	for _, workers := range []int{1, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			repo := memory.NewPropertyRepo()
			orgs := app.NewOrganizationService(memory.NewOrganizationRepo())
			props := app.NewPropertyService(slowCountRepo{repo}, orgs, nil, time.Minute)

			var src sliceSource
			for i := 0; i < 20; i++ {
				src = append(src, app.ImportListing{ExternalID: fmt.Sprint(i), Property: validDTO(fmt.Sprintf("Listing %d", i))})
			}

			rep, err := app.NewImporter(props, workers).Run(context.Background(), src, alice)
			if !errors.Is(err, domain.ErrPlanLimitReached) {
				t.Fatalf("want plan limit, got %v", err)
			}
			ceiling := domain.PlanFree.MaxProperties()
			if rep.Created != ceiling {
				t.Fatalf("created %d, want %d (%+v)", rep.Created, ceiling, rep)
			}
			mine, _ := props.ListUserProperties(context.Background(), alice)
			if len(mine) != ceiling {
				t.Fatalf("stored %d, ceiling %d", len(mine), ceiling)
			}
			if rep.Failed == 0 {
				t.Fatalf("run did not stop: %+v", rep)
			}
		})
	}
}

func TestImporter_RequiresActor(t *testing.T) {
	s := newServices()
	_, err := app.NewImporter(s.props, 1).Run(context.Background(), sliceSource{}, app.Actor{})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}
