package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"estate_hub/internal/domain"
)

// DefaultSlugPrefix marks provisioned default organizations; callers cannot
// pick slugs under it.
const DefaultSlugPrefix = "org-"

// provisionAttempts bounds the salted retries when a default slug is held
// by somebody else.
const provisionAttempts = 3

type OrganizationService struct {
	repo domain.OrganizationRepository
}

func NewOrganizationService(r domain.OrganizationRepository) *OrganizationService {
	return &OrganizationService{repo: r}
}

// CreateOrganization checks the slug first for a friendly error; the
// storage unique index still decides, and both paths yield ErrSlugTaken.
func (s *OrganizationService) CreateOrganization(ctx context.Context, actor Actor, in CreateOrganizationDTO) (domain.Organization, error) {
	if actor.Anonymous() {
		return domain.Organization{}, domain.Unauthorized("create organizations")
	}
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if err := domain.ValidateSlug(slug); err != nil {
		return domain.Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}
	if strings.HasPrefix(slug, DefaultSlugPrefix) {
		return domain.Organization{}, domain.InvalidParam("slug", "the "+DefaultSlugPrefix+" prefix is reserved")
	}
	ok, err := s.repo.IsSlugAvailable(ctx, slug)
	if err != nil {
		return domain.Organization{}, err
	}
	if !ok {
		return domain.Organization{}, fmt.Errorf("%q: %w", slug, domain.ErrSlugTaken)
	}
	org, err := domain.NewOrganization(in.Name, slug, in.Description, actor.UserID)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}
	if err := s.repo.Save(ctx, org); err != nil {
		return domain.Organization{}, err
	}
	log.Info().Str("org_id", org.ID()).Str("slug", slug).Str("owner", actor.UserID).Msg("organization created")
	return org, nil
}

func (s *OrganizationService) GetOrganization(ctx context.Context, id string) (domain.Organization, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OrganizationService) GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	return s.repo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

func (s *OrganizationService) ListUserOrganizations(ctx context.Context, actor Actor) ([]domain.Organization, error) {
	if actor.Anonymous() {
		return nil, domain.Unauthorized("list organizations")
	}
	return s.repo.FindByOwnerID(ctx, actor.UserID)
}

// IsSlugAvailable reports false (with the validation error) for malformed
// slugs.
func (s *OrganizationService) IsSlugAvailable(ctx context.Context, slug string) (bool, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if err := domain.ValidateSlug(slug); err != nil {
		return false, err
	}
	return s.repo.IsSlugAvailable(ctx, slug)
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, id string, actor Actor, in UpdateOrganizationDTO) (domain.Organization, error) {
	return s.mutate(ctx, id, actor, "update this organization", func(o domain.Organization) (domain.Organization, error) {
		next, err := o.UpdateDetails(in.Name, in.Description)
		if err != nil {
			return next, fmt.Errorf("failed to update organization: %w", err)
		}
		return next, nil
	})
}

func (s *OrganizationService) UpdateSettings(ctx context.Context, id string, actor Actor, in SettingsDTO) (domain.Organization, error) {
	return s.mutate(ctx, id, actor, "update this organization's settings", func(o domain.Organization) (domain.Organization, error) {
		return o.UpdateSettings(toSettings(in)), nil
	})
}

func (s *OrganizationService) ChangePlan(ctx context.Context, id string, actor Actor, in ChangePlanDTO) (domain.Organization, error) {
	plan, err := domain.ParsePlan(in.Plan)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("failed to change plan: %w", err)
	}
	return s.mutate(ctx, id, actor, "change this organization's plan", func(o domain.Organization) (domain.Organization, error) {
		return o.ChangePlan(plan)
	})
}

func (s *OrganizationService) SuspendOrganization(ctx context.Context, id string, actor Actor) (domain.Organization, error) {
	return s.mutate(ctx, id, actor, "suspend this organization", func(o domain.Organization) (domain.Organization, error) {
		return o.Suspend(), nil
	})
}

func (s *OrganizationService) ActivateOrganization(ctx context.Context, id string, actor Actor) (domain.Organization, error) {
	return s.mutate(ctx, id, actor, "activate this organization", func(o domain.Organization) (domain.Organization, error) {
		return o.Activate(), nil
	})
}

// DeleteOrganization leaves the organization's properties in place.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, id string, actor Actor) error {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !o.IsOwnedBy(actor.UserID) {
		return domain.Unauthorized("delete this organization")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("org_id", id).Str("owner", actor.UserID).Msg("organization deleted")
	return nil
}

// GetOrCreateUserDefaultOrganization returns the caller's first organization,
// provisioning a free-plan one on first use. The slug is derived from the
// user id, so a concurrent duplicate provisioning loses on the slug index
// and re-reads the winner. When the slug is held by an organization the
// caller does not own, a random suffix is appended and the save retried.
func (s *OrganizationService) GetOrCreateUserDefaultOrganization(ctx context.Context, userID, email string) (domain.Organization, error) {
	if userID == "" {
		return domain.Organization{}, domain.Unauthorized("provision an organization")
	}
	if o, ok, err := s.firstOwned(ctx, userID); err != nil || ok {
		return o, err
	}

	base := DefaultOrgSlug(userID)
	slug := base
	var lastErr error
	for attempt := 0; attempt < provisionAttempts; attempt++ {
		org, err := domain.NewOrganization(defaultOrgName(email), slug, "", userID)
		if err != nil {
			return domain.Organization{}, err
		}
		err = s.repo.Save(ctx, org)
		if err == nil {
			log.Info().Str("org_id", org.ID()).Str("slug", slug).Str("owner", userID).Msg("default organization provisioned")
			return org, nil
		}
		if !errors.Is(err, domain.ErrSlugTaken) {
			return domain.Organization{}, err
		}
		o, ok, ferr := s.firstOwned(ctx, userID)
		if ferr != nil {
			return domain.Organization{}, ferr
		}
		if ok {
			return o, nil
		}
		lastErr = err
		log.Warn().Str("slug", slug).Str("owner", userID).Msg("default slug held by another owner")
		slug = base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return domain.Organization{}, lastErr
}

func (s *OrganizationService) firstOwned(ctx context.Context, userID string) (domain.Organization, bool, error) {
	orgs, err := s.repo.FindByOwnerID(ctx, userID)
	if err != nil || len(orgs) == 0 {
		return domain.Organization{}, false, err
	}
	return orgs[0], true, nil
}

func (s *OrganizationService) mutate(ctx context.Context, id string, actor Actor, action string,
	fn func(domain.Organization) (domain.Organization, error)) (domain.Organization, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Organization{}, err
	}
	if !o.IsOwnedBy(actor.UserID) {
		return domain.Organization{}, domain.Unauthorized(action)
	}
	next, err := fn(o)
	if err != nil {
		return domain.Organization{}, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return domain.Organization{}, err
	}
	return next, nil
}

// DefaultOrgSlug derives "org-<prefix>-<hash>" from a user id: up to eight
// slug-safe characters of the id plus six hex digits of its sha1, so ids that
// sanitise alike still get distinct slugs.
func DefaultOrgSlug(userID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(userID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 8 {
				break
			}
		}
	}
	sum := sha1.Sum([]byte(userID))
	h := hex.EncodeToString(sum[:])
	if b.Len() == 0 {
		return "org-" + h[:12]
	}
	return "org-" + b.String() + "-" + h[:6]
}

func defaultOrgName(email string) string {
	local, _, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" {
		return "My Organization"
	}
	return local + "'s Organization"
}
