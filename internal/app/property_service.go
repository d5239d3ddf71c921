package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"estate_hub/internal/domain"
)

type PropertyService struct {
	repo     domain.PropertyRepository
	orgs     *OrganizationService
	cache    domain.Cache
	cacheTTL time.Duration
	orgLocks keyedMutex

	create  *CreatePropertyUseCase
	list    *GetPropertiesUseCase
	publish *PublishPropertyUseCase
}

// NewPropertyService wires the property use cases. cache may be nil.
func NewPropertyService(r domain.PropertyRepository, orgs *OrganizationService, c domain.Cache, ttl time.Duration) *PropertyService {
	return &PropertyService{
		repo:     r,
		orgs:     orgs,
		cache:    c,
		cacheTTL: ttl,
		create:   NewCreatePropertyUseCase(r),
		list:     NewGetPropertiesUseCase(r),
		publish:  NewPublishPropertyUseCase(r),
	}
}

// CreateProperty files a new draft for the caller. Without an organization
// id the caller's default organization is used (and provisioned if needed).
// The organization must be owned by the caller, active, and below its plan
// ceiling.
func (s *PropertyService) CreateProperty(ctx context.Context, actor Actor, in CreatePropertyDTO) (domain.Property, error) {
	if actor.Anonymous() {
		return domain.Property{}, domain.Unauthorized("create properties")
	}

	var (
		org domain.Organization
		err error
	)
	if in.OrganizationID == "" {
		org, err = s.orgs.GetOrCreateUserDefaultOrganization(ctx, actor.UserID, actor.Email)
	} else {
		org, err = s.orgs.GetOrganization(ctx, in.OrganizationID)
	}
	if err != nil {
		return domain.Property{}, err
	}
	if !org.IsOwnedBy(actor.UserID) {
		return domain.Property{}, domain.Unauthorized("create properties in this organization")
	}
	if !org.CanCreateProperties() {
		return domain.Property{}, domain.ErrOrganizationInactive
	}

	// count and insert must not interleave for one organization, or
	// concurrent creates (the importer's workers) overshoot the plan
	orgID := org.ID()
	unlock := s.orgLocks.Lock(orgID)
	defer unlock()
	count, err := s.repo.Count(ctx, domain.PropertyFilters{OrganizationID: &orgID})
	if err != nil {
		return domain.Property{}, err
	}
	if org.HasReachedPropertyLimit(count) {
		return domain.Property{}, fmt.Errorf("%w: %d of %d on the %s plan",
			domain.ErrPlanLimitReached, count, org.MaxPropertiesLimit(), org.Plan())
	}

	in.OwnerID = actor.UserID
	in.OrganizationID = orgID
	p, err := s.create.Execute(ctx, in)
	if err != nil {
		return domain.Property{}, err
	}
	log.Info().Str("property_id", p.ID()).Str("org_id", orgID).Str("owner", actor.UserID).Msg("property created")
	return p, nil
}

func (s *PropertyService) GetProperties(ctx context.Context, q GetPropertiesQuery) (PropertiesPage, error) {
	return s.list.Execute(ctx, q)
}

// GetProperty serves a single listing through the cache. Drafts and other
// unpublished listings are only visible to their owner.
func (s *PropertyService) GetProperty(ctx context.Context, id string, viewer Actor) (PropertyView, error) {
	key := propertyCacheKey(id)
	var v PropertyView
	hit := false
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &v)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		hit = ok && err == nil
	}
	if !hit {
		p, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return PropertyView{}, err
		}
		v = NewPropertyView(p)
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache set failed")
			}
		}
	}
	if v.Status != string(domain.StatusPublished) && v.OwnerID != viewer.UserID {
		return PropertyView{}, domain.ErrPropertyNotFound
	}
	return v.ForViewer(viewer.UserID), nil
}

func (s *PropertyService) ListUserProperties(ctx context.Context, actor Actor) ([]domain.Property, error) {
	if actor.Anonymous() {
		return nil, domain.Unauthorized("list your properties")
	}
	return s.repo.FindByOwnerID(ctx, actor.UserID)
}

func (s *PropertyService) PublishProperty(ctx context.Context, id string, actor Actor) (domain.Property, error) {
	p, err := s.publish.Execute(ctx, id, actor.UserID)
	if err != nil {
		return domain.Property{}, err
	}
	s.invalidate(ctx, id)
	log.Info().Str("property_id", id).Msg("property published")
	return p, nil
}

func (s *PropertyService) UpdateProperty(ctx context.Context, id string, actor Actor, in UpdatePropertyDTO) (domain.Property, error) {
	return s.mutate(ctx, id, actor, "update this property", func(p domain.Property) (domain.Property, error) {
		u, err := toDetailsUpdate(p, in)
		if err != nil {
			return domain.Property{}, wrapValidation("update property", err)
		}
		next, err := p.UpdateDetails(u)
		return next, wrapValidation("update property", err)
	})
}

func (s *PropertyService) AddImage(ctx context.Context, id string, actor Actor, url string) (domain.Property, error) {
	return s.mutate(ctx, id, actor, "add images to this property", func(p domain.Property) (domain.Property, error) {
		return p.AddImage(url)
	})
}

func (s *PropertyService) RemoveImage(ctx context.Context, id string, actor Actor, url string) (domain.Property, error) {
	return s.mutate(ctx, id, actor, "remove images from this property", func(p domain.Property) (domain.Property, error) {
		return p.RemoveImage(url)
	})
}

func (s *PropertyService) SuspendProperty(ctx context.Context, id string, actor Actor) (domain.Property, error) {
	return s.mutate(ctx, id, actor, "suspend this property", domain.Property.Suspend)
}

func (s *PropertyService) MarkPropertySold(ctx context.Context, id string, actor Actor) (domain.Property, error) {
	return s.mutate(ctx, id, actor, "mark this property as sold", domain.Property.MarkAsSold)
}

func (s *PropertyService) MarkPropertyRented(ctx context.Context, id string, actor Actor) (domain.Property, error) {
	return s.mutate(ctx, id, actor, "mark this property as rented", domain.Property.MarkAsRented)
}

// DeleteProperty mirrors publish: load, verify ownership, then delete.
func (s *PropertyService) DeleteProperty(ctx context.Context, id string, actor Actor) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsOwnedBy(actor.UserID) {
		return domain.Unauthorized("delete this property")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	log.Info().Str("property_id", id).Msg("property deleted")
	return nil
}

func (s *PropertyService) mutate(ctx context.Context, id string, actor Actor, action string,
	fn func(domain.Property) (domain.Property, error)) (domain.Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	if !p.IsOwnedBy(actor.UserID) {
		return domain.Property{}, domain.Unauthorized(action)
	}
	next, err := fn(p)
	if err != nil {
		return domain.Property{}, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return domain.Property{}, err
	}
	s.invalidate(ctx, id)
	return next, nil
}

func (s *PropertyService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, propertyCacheKey(id)); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("property_id", id).Msg("cache invalidation failed")
	}
}

func propertyCacheKey(id string) string { return "property:" + id }

// keyedMutex hands out one mutex per key and forgets it once nobody holds
// or waits for it.
type keyedMutex struct {
	mu sync.Mutex
	m  map[string]*keyedEntry
}

type keyedEntry struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*keyedEntry)
	}
	e, ok := k.m[key]
	if !ok {
		e = &keyedEntry{}
		k.m[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		k.mu.Lock()
		if e.refs--; e.refs == 0 {
			delete(k.m, key)
		}
		k.mu.Unlock()
	}
}
