// Package memory holds map-backed repositories used by the memory storage
// driver and by tests. Entities are immutable values, so storing them
// directly is safe.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"estate_hub/internal/domain"
)

type PropertyRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Property
}

func NewPropertyRepo() *PropertyRepo {
	return &PropertyRepo{items: make(map[string]domain.Property)}
}

func (r *PropertyRepo) Save(ctx context.Context, p domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID()]; ok {
		return fmt.Errorf("property %s already exists", p.ID())
	}
	r.items[p.ID()] = p
	return nil
}

func (r *PropertyRepo) Update(ctx context.Context, p domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID()]; !ok {
		return domain.ErrPropertyNotFound
	}
	r.items[p.ID()] = p
	return nil
}

func (r *PropertyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrPropertyNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *PropertyRepo) FindByID(ctx context.Context, id string) (domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return p, nil
}

func (r *PropertyRepo) FindByOwnerID(ctx context.Context, ownerID string) ([]domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Property{}
	for _, p := range r.items {
		if p.OwnerID() == ownerID {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *PropertyRepo) FindAll(ctx context.Context, f domain.PropertyFilters, limit, offset int) ([]domain.Property, error) {
	if offset < 0 || limit < 0 {
		return nil, domain.InvalidParam("offset", "must not be negative")
	}
	matched := r.match(f)
	if offset >= len(matched) {
		return []domain.Property{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

func (r *PropertyRepo) Count(ctx context.Context, f domain.PropertyFilters) (int64, error) {
	return int64(len(r.match(f))), nil
}

func (r *PropertyRepo) match(f domain.PropertyFilters) []domain.Property {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Property{}
	for _, p := range r.items {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(ps []domain.Property) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].CreatedAt().Equal(ps[j].CreatedAt()) {
			return ps[i].ID() < ps[j].ID()
		}
		return ps[i].CreatedAt().After(ps[j].CreatedAt())
	})
}
