package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"estate_hub/internal/domain"
)

type OrganizationRepo struct {
	mu     sync.RWMutex
	items  map[string]domain.Organization
	bySlug map[string]string // slug -> id
}

func NewOrganizationRepo() *OrganizationRepo {
	return &OrganizationRepo{
		items:  make(map[string]domain.Organization),
		bySlug: make(map[string]string),
	}
}

// Save enforces slug uniqueness the way the document store's unique index
// does.
func (r *OrganizationRepo) Save(ctx context.Context, o domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[o.ID()]; ok {
		return fmt.Errorf("organization %s already exists", o.ID())
	}
	if _, ok := r.bySlug[o.Slug()]; ok {
		return fmt.Errorf("%q: %w", o.Slug(), domain.ErrSlugTaken)
	}
	r.items[o.ID()] = o
	r.bySlug[o.Slug()] = o.ID()
	return nil
}

func (r *OrganizationRepo) Update(ctx context.Context, o domain.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.items[o.ID()]
	if !ok {
		return domain.ErrOrganizationNotFound
	}
	if prev.Slug() != o.Slug() {
		if id, taken := r.bySlug[o.Slug()]; taken && id != o.ID() {
			return fmt.Errorf("%q: %w", o.Slug(), domain.ErrSlugTaken)
		}
		delete(r.bySlug, prev.Slug())
		r.bySlug[o.Slug()] = o.ID()
	}
	r.items[o.ID()] = o
	return nil
}

func (r *OrganizationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.items[id]
	if !ok {
		return domain.ErrOrganizationNotFound
	}
	delete(r.bySlug, o.Slug())
	delete(r.items, id)
	return nil
}

func (r *OrganizationRepo) FindByID(ctx context.Context, id string) (domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.items[id]
	if !ok {
		return domain.Organization{}, domain.ErrOrganizationNotFound
	}
	return o, nil
}

func (r *OrganizationRepo) FindBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[slug]
	if !ok {
		return domain.Organization{}, domain.ErrOrganizationNotFound
	}
	return r.items[id], nil
}

// FindByOwnerID returns the owner's organizations, oldest first.
func (r *OrganizationRepo) FindByOwnerID(ctx context.Context, ownerID string) ([]domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Organization{}
	for _, o := range r.items {
		if o.OwnerID() == ownerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

func (r *OrganizationRepo) IsSlugAvailable(ctx context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, taken := r.bySlug[slug]
	return !taken, nil
}
