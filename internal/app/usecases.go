package app

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"estate_hub/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type CreatePropertyUseCase struct {
	repo domain.PropertyRepository
}

func NewCreatePropertyUseCase(r domain.PropertyRepository) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{repo: r}
}

// Execute trusts the DTO shape but still rebuilds every value object, so
// invalid input cannot reach the repository.
func (uc *CreatePropertyUseCase) Execute(ctx context.Context, in CreatePropertyDTO) (domain.Property, error) {
	params, err := toPropertyParams(in)
	if err != nil {
		return domain.Property{}, fmt.Errorf("failed to create property: %w", err)
	}
	p, err := domain.NewProperty(params)
	if err != nil {
		return domain.Property{}, fmt.Errorf("failed to create property: %w", err)
	}
	if err := uc.repo.Save(ctx, p); err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

type GetPropertiesQuery struct {
	Filters domain.PropertyFilters
	Page    int
	Limit   int
}

type PropertiesPage struct {
	Properties []domain.Property
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type GetPropertiesUseCase struct {
	repo domain.PropertyRepository
}

func NewGetPropertiesUseCase(r domain.PropertyRepository) *GetPropertiesUseCase {
	return &GetPropertiesUseCase{repo: r}
}

func (uc *GetPropertiesUseCase) Execute(ctx context.Context, q GetPropertiesQuery) (PropertiesPage, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page-1 > math.MaxInt/limit {
		return PropertiesPage{}, domain.InvalidParam("page", "is out of range")
	}
	offset := (page - 1) * limit

	// listing and counting are independent reads; overlap them
	var (
		items []domain.Property
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = uc.repo.FindAll(gctx, q.Filters, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = uc.repo.Count(gctx, q.Filters)
		return err
	})
	if err := g.Wait(); err != nil {
		return PropertiesPage{}, err
	}

	return PropertiesPage{
		Properties: items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

type PublishPropertyUseCase struct {
	repo domain.PropertyRepository
}

func NewPublishPropertyUseCase(r domain.PropertyRepository) *PublishPropertyUseCase {
	return &PublishPropertyUseCase{repo: r}
}

func (uc *PublishPropertyUseCase) Execute(ctx context.Context, propertyID, userID string) (domain.Property, error) {
	p, err := uc.repo.FindByID(ctx, propertyID)
	if err != nil {
		return domain.Property{}, err
	}
	if !p.IsOwnedBy(userID) {
		return domain.Property{}, domain.Unauthorized("publish this property")
	}
	published, err := p.Publish()
	if err != nil {
		return domain.Property{}, err
	}
	if err := uc.repo.Update(ctx, published); err != nil {
		return domain.Property{}, err
	}
	return published, nil
}
