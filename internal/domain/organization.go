package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrganizationStatus string

const (
	OrgActive    OrganizationStatus = "active"
	OrgInactive  OrganizationStatus = "inactive"
	OrgSuspended OrganizationStatus = "suspended"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// UnlimitedProperties is the property ceiling of plans without a limit.
const UnlimitedProperties = -1

var planLimits = map[Plan]int{
	PlanFree:       5,
	PlanBasic:      50,
	PlanPremium:    200,
	PlanEnterprise: UnlimitedProperties,
}

func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := planLimits[p]; !ok {
		return "", invalid("plan", "is not supported: "+s)
	}
	return p, nil
}

func (p Plan) MaxProperties() int { return planLimits[p] }

func ParseOrganizationStatus(s string) (OrganizationStatus, error) {
	switch st := OrganizationStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrgActive, OrgInactive, OrgSuspended:
		return st, nil
	}
	return "", invalid("organization status", "is not supported: "+s)
}

const (
	minSlugLen = 3
	maxSlugLen = 50
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateSlug checks the lowercase kebab-case slug format and length.
func ValidateSlug(slug string) error {
	if len(slug) < minSlugLen || len(slug) > maxSlugLen {
		return invalid("slug", "must be between 3 and 50 characters")
	}
	if !slugPattern.MatchString(slug) {
		return invalid("slug", "must be lowercase kebab-case")
	}
	return nil
}

type Branding struct {
	LogoURL        string
	PrimaryColor   string
	SecondaryColor string
}

type NotificationPreferences struct {
	Email       bool
	NewListings bool
	Inquiries   bool
}

type OrganizationSettings struct {
	IsPublic            bool
	AllowPublicListings bool
	RequireApproval     bool
	Branding            *Branding
	Notifications       *NotificationPreferences
}

// DefaultOrganizationSettings is applied to newly created organizations.
func DefaultOrganizationSettings() OrganizationSettings {
	return OrganizationSettings{
		IsPublic:            true,
		AllowPublicListings: true,
		Notifications:       &NotificationPreferences{Email: true, NewListings: true, Inquiries: true},
	}
}

func (s OrganizationSettings) clone() OrganizationSettings {
	out := s
	out.Branding = clonePtr(s.Branding)
	out.Notifications = clonePtr(s.Notifications)
	return out
}

type OrganizationSnapshot struct {
	ID          string
	Name        string
	Slug        string
	Description string
	OwnerID     string
	Status      OrganizationStatus
	Plan        Plan
	Settings    OrganizationSettings
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Organization is the tenant aggregate. Like Property it is immutable.
type Organization struct {
	id          string
	name        string
	slug        string
	description string
	ownerID     string
	status      OrganizationStatus
	plan        Plan
	settings    OrganizationSettings
	createdAt   time.Time
	updatedAt   time.Time
}

// NewOrganization creates an active organization on the free plan.
func NewOrganization(name, slug, description, ownerID string) (Organization, error) {
	now := time.Now().UTC()
	return buildOrganization(OrganizationSnapshot{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug,
		Description: description,
		OwnerID:     ownerID,
		Status:      OrgActive,
		Plan:        PlanFree,
		Settings:    DefaultOrganizationSettings(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func RestoreOrganization(s OrganizationSnapshot) (Organization, error) {
	if strings.TrimSpace(s.ID) == "" {
		return Organization{}, invalid("id", "is required")
	}
	if _, err := ParseOrganizationStatus(string(s.Status)); err != nil {
		return Organization{}, err
	}
	if _, err := ParsePlan(string(s.Plan)); err != nil {
		return Organization{}, err
	}
	return buildOrganization(s)
}

func buildOrganization(s OrganizationSnapshot) (Organization, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return Organization{}, invalid("name", "is required")
	}
	if strings.TrimSpace(s.OwnerID) == "" {
		return Organization{}, invalid("owner id", "is required")
	}
	if err := ValidateSlug(s.Slug); err != nil {
		return Organization{}, err
	}
	return Organization{
		id:          s.ID,
		name:        name,
		slug:        s.Slug,
		description: strings.TrimSpace(s.Description),
		ownerID:     s.OwnerID,
		status:      s.Status,
		plan:        s.Plan,
		settings:    s.Settings.clone(),
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}, nil
}

func (o Organization) ID() string                     { return o.id }
func (o Organization) Name() string                   { return o.name }
func (o Organization) Slug() string                   { return o.slug }
func (o Organization) Description() string            { return o.description }
func (o Organization) OwnerID() string                { return o.ownerID }
func (o Organization) Status() OrganizationStatus     { return o.status }
func (o Organization) Plan() Plan                     { return o.plan }
func (o Organization) Settings() OrganizationSettings { return o.settings.clone() }
func (o Organization) CreatedAt() time.Time           { return o.createdAt }
func (o Organization) UpdatedAt() time.Time           { return o.updatedAt }
func (o Organization) IsActive() bool                 { return o.status == OrgActive }
func (o Organization) IsOwnedBy(userID string) bool   { return userID != "" && o.ownerID == userID }

// CanCreateProperties only looks at the status; the plan ceiling is checked
// separately with HasReachedPropertyLimit.
func (o Organization) CanCreateProperties() bool { return o.IsActive() }

func (o Organization) MaxPropertiesLimit() int { return o.plan.MaxProperties() }

func (o Organization) HasReachedPropertyLimit(current int64) bool {
	limit := o.MaxPropertiesLimit()
	return limit != UnlimitedProperties && current >= int64(limit)
}

func (o Organization) UpdateDetails(name, description string) (Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Organization{}, invalid("name", "is required")
	}
	out := o.copy()
	out.name = name
	out.description = strings.TrimSpace(description)
	return out.touch(), nil
}

func (o Organization) UpdateSettings(s OrganizationSettings) Organization {
	out := o.copy()
	out.settings = s.clone()
	return out.touch()
}

func (o Organization) ChangePlan(p Plan) (Organization, error) {
	if _, ok := planLimits[p]; !ok {
		return Organization{}, invalid("plan", "is not supported: "+string(p))
	}
	out := o.copy()
	out.plan = p
	return out.touch(), nil
}

func (o Organization) Suspend() Organization {
	out := o.copy()
	out.status = OrgSuspended
	return out.touch()
}

func (o Organization) Activate() Organization {
	out := o.copy()
	out.status = OrgActive
	return out.touch()
}

func (o Organization) copy() Organization {
	out := o
	out.settings = o.settings.clone()
	return out
}

func (o Organization) touch() Organization {
	o.updatedAt = time.Now().UTC()
	return o
}
