package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type PropertyRepository interface {
	// Write paths
	Save(ctx context.Context, p Property) error
	Update(ctx context.Context, p Property) error
	Delete(ctx context.Context, id string) error

	// Read paths. FindByID returns ErrPropertyNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (Property, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]Property, error)
	// FindAll and Count only see published properties unless the filters
	// name an owner or an organization.
	FindAll(ctx context.Context, f PropertyFilters, limit, offset int) ([]Property, error)
	Count(ctx context.Context, f PropertyFilters) (int64, error)
}

type OrganizationRepository interface {
	// Save fails with ErrSlugTaken when the slug is already stored.
	Save(ctx context.Context, o Organization) error
	Update(ctx context.Context, o Organization) error
	Delete(ctx context.Context, id string) error

	FindByID(ctx context.Context, id string) (Organization, error)
	FindBySlug(ctx context.Context, slug string) (Organization, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]Organization, error)
	IsSlugAvailable(ctx context.Context, slug string) (bool, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// PropertyFilters is a flat set of optional predicates; nil/empty means
// "no constraint".
type PropertyFilters struct {
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	Type           *PropertyType
	City           *string
	State          *string
	MinBedrooms    *int
	MinBathrooms   *int
	Amenities      []string // matches properties sharing at least one amenity
	OwnerID        *string
	OrganizationID *string
	Status         *PropertyStatus
}

// Scoped reports whether the filters name an owner or organization, which
// lifts the published-only default.
func (f PropertyFilters) Scoped() bool {
	return (f.OwnerID != nil && *f.OwnerID != "") || (f.OrganizationID != nil && *f.OrganizationID != "")
}

// EffectiveStatus is the status predicate adapters must apply.
func (f PropertyFilters) EffectiveStatus() *PropertyStatus {
	if !f.Scoped() {
		s := StatusPublished
		return &s
	}
	return f.Status
}

// Matches evaluates the filters against p in memory.
func (f PropertyFilters) Matches(p Property) bool {
	if s := f.EffectiveStatus(); s != nil && p.status != *s {
		return false
	}
	if f.OwnerID != nil && *f.OwnerID != "" && p.ownerID != *f.OwnerID {
		return false
	}
	if f.OrganizationID != nil && *f.OrganizationID != "" && p.organizationID != *f.OrganizationID {
		return false
	}
	if f.MinPrice != nil && p.price.amount.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.price.amount.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Type != nil && p.propertyType != *f.Type {
		return false
	}
	if f.City != nil && !equalFoldTrim(p.address.city, *f.City) {
		return false
	}
	if f.State != nil && !equalFoldTrim(p.address.state, *f.State) {
		return false
	}
	if f.MinBedrooms != nil && p.features.bedrooms < *f.MinBedrooms {
		return false
	}
	if f.MinBathrooms != nil && p.features.bathrooms < *f.MinBathrooms {
		return false
	}
	if len(f.Amenities) > 0 {
		hit := false
		for _, a := range f.Amenities {
			if p.features.HasAmenity(a) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
