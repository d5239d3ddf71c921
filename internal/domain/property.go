package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PropertyStatus string

const (
	StatusDraft     PropertyStatus = "draft"
	StatusPublished PropertyStatus = "published"
	StatusSold      PropertyStatus = "sold"
	StatusRented    PropertyStatus = "rented"
	StatusSuspended PropertyStatus = "suspended"
)

func ParsePropertyStatus(s string) (PropertyStatus, error) {
	switch st := PropertyStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusDraft, StatusPublished, StatusSold, StatusRented, StatusSuspended:
		return st, nil
	}
	return "", invalid("status", "is not supported: "+s)
}

// Terminal reports whether no transition leaves the status.
func (s PropertyStatus) Terminal() bool { return s == StatusSold || s == StatusSuspended }

// PropertyParams is the input of NewProperty.
type PropertyParams struct {
	Title          string
	Description    string
	Price          Price
	Type           PropertyType
	Address        Address
	Features       PropertyFeatures
	Images         []string
	OwnerID        string
	OrganizationID string
}

// PropertySnapshot is a persisted property as read back by a repository.
type PropertySnapshot struct {
	ID string
	PropertyParams
	Status    PropertyStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Property is the listing aggregate. Values are immutable: every mutator
// returns a new Property and leaves the receiver untouched.
type Property struct {
	id             string
	title          string
	description    string
	price          Price
	propertyType   PropertyType
	address        Address
	features       PropertyFeatures
	images         []string
	ownerID        string
	organizationID string
	status         PropertyStatus
	createdAt      time.Time
	updatedAt      time.Time
}

// NewProperty creates a draft listing with a fresh id.
func NewProperty(p PropertyParams) (Property, error) {
	now := time.Now().UTC()
	return buildProperty(PropertySnapshot{
		ID:             uuid.NewString(),
		PropertyParams: p,
		Status:         StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

// RestoreProperty rehydrates a stored property, re-checking its invariants.
func RestoreProperty(s PropertySnapshot) (Property, error) {
	if strings.TrimSpace(s.ID) == "" {
		return Property{}, invalid("id", "is required")
	}
	if _, err := ParsePropertyStatus(string(s.Status)); err != nil {
		return Property{}, err
	}
	return buildProperty(s)
}

func buildProperty(s PropertySnapshot) (Property, error) {
	title := strings.TrimSpace(s.Title)
	desc := strings.TrimSpace(s.Description)
	switch {
	case title == "":
		return Property{}, invalid("title", "is required")
	case desc == "":
		return Property{}, invalid("description", "is required")
	case strings.TrimSpace(s.OwnerID) == "":
		return Property{}, invalid("owner id", "is required")
	case strings.TrimSpace(s.OrganizationID) == "":
		return Property{}, invalid("organization id", "is required")
	case len(s.Price.currency) != 3:
		return Property{}, invalid("price", "is required")
	case s.Address.city == "":
		return Property{}, invalid("address", "is required")
	case s.Features.squareMeters <= 0:
		return Property{}, invalid("features", "are required")
	}
	if _, ok := propertyTypeLabels[s.Type]; !ok {
		return Property{}, invalid("property type", "is not supported: "+string(s.Type))
	}
	images, err := normalizeImages(s.Images)
	if err != nil {
		return Property{}, err
	}
	return Property{
		id:             s.ID,
		title:          title,
		description:    desc,
		price:          s.Price,
		propertyType:   s.Type,
		address:        s.Address,
		features:       s.Features.clone(),
		images:         images,
		ownerID:        s.OwnerID,
		organizationID: s.OrganizationID,
		status:         s.Status,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
	}, nil
}

func normalizeImages(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, invalid("images", "must contain at least one image")
	}
	out := make([]string, 0, len(in))
	for _, img := range in {
		img = strings.TrimSpace(img)
		if img == "" {
			return nil, invalid("images", "must not contain empty urls")
		}
		if slices.Contains(out, img) {
			return nil, invalid("images", "must not contain duplicates")
		}
		out = append(out, img)
	}
	return out, nil
}

func (p Property) ID() string                   { return p.id }
func (p Property) Title() string                { return p.title }
func (p Property) Description() string          { return p.description }
func (p Property) Price() Price                 { return p.price }
func (p Property) Type() PropertyType           { return p.propertyType }
func (p Property) Address() Address             { return p.address }
func (p Property) Features() PropertyFeatures   { return p.features.clone() }
func (p Property) Images() []string             { return slices.Clone(p.images) }
func (p Property) OwnerID() string              { return p.ownerID }
func (p Property) OrganizationID() string       { return p.organizationID }
func (p Property) Status() PropertyStatus       { return p.status }
func (p Property) CreatedAt() time.Time         { return p.createdAt }
func (p Property) UpdatedAt() time.Time         { return p.updatedAt }
func (p Property) IsPublished() bool            { return p.status == StatusPublished }
func (p Property) IsOwnedBy(userID string) bool { return userID != "" && p.ownerID == userID }

// DetailsUpdate lists the fields UpdateDetails may change; nil leaves the
// current value.
type DetailsUpdate struct {
	Title       *string
	Description *string
	Price       *Price
	Type        *PropertyType
	Address     *Address
	Features    *PropertyFeatures
}

func (p Property) UpdateDetails(u DetailsUpdate) (Property, error) {
	out := p.copy()
	if u.Title != nil {
		if strings.TrimSpace(*u.Title) == "" {
			return Property{}, invalid("title", "is required")
		}
		out.title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		if strings.TrimSpace(*u.Description) == "" {
			return Property{}, invalid("description", "is required")
		}
		out.description = strings.TrimSpace(*u.Description)
	}
	if u.Price != nil {
		out.price = *u.Price
	}
	if u.Type != nil {
		if _, ok := propertyTypeLabels[*u.Type]; !ok {
			return Property{}, invalid("property type", "is not supported: "+string(*u.Type))
		}
		out.propertyType = *u.Type
	}
	if u.Address != nil {
		out.address = *u.Address
	}
	if u.Features != nil {
		out.features = u.Features.clone()
	}
	return out.touch(), nil
}

func (p Property) AddImage(url string) (Property, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Property{}, invalid("image", "url is required")
	}
	if slices.Contains(p.images, url) {
		return Property{}, ErrDuplicateImage
	}
	out := p.copy()
	out.images = append(out.images, url)
	return out.touch(), nil
}

func (p Property) RemoveImage(url string) (Property, error) {
	i := slices.Index(p.images, strings.TrimSpace(url))
	if i < 0 {
		return Property{}, ErrImageNotFound
	}
	if len(p.images) == 1 {
		return Property{}, ErrLastImage
	}
	out := p.copy()
	out.images = slices.Delete(out.images, i, i+1)
	return out.touch(), nil
}

func (p Property) Publish() (Property, error) {
	switch p.status {
	case StatusPublished:
		return Property{}, ErrAlreadyPublished
	case StatusDraft:
		return p.withStatus(StatusPublished), nil
	}
	return Property{}, transitionErr(p.status, StatusPublished)
}

func (p Property) Suspend() (Property, error) {
	if p.status.Terminal() {
		return Property{}, transitionErr(p.status, StatusSuspended)
	}
	return p.withStatus(StatusSuspended), nil
}

func (p Property) MarkAsSold() (Property, error) {
	if p.status.Terminal() {
		return Property{}, transitionErr(p.status, StatusSold)
	}
	return p.withStatus(StatusSold), nil
}

// MarkAsRented only applies to live listings.
func (p Property) MarkAsRented() (Property, error) {
	if p.status != StatusPublished {
		return Property{}, transitionErr(p.status, StatusRented)
	}
	return p.withStatus(StatusRented), nil
}

func (p Property) withStatus(s PropertyStatus) Property {
	out := p.copy()
	out.status = s
	return out.touch()
}

func (p Property) copy() Property {
	out := p
	out.images = slices.Clone(p.images)
	out.features = p.features.clone()
	return out
}

func (p Property) touch() Property {
	p.updatedAt = time.Now().UTC()
	return p
}

func transitionErr(from, to PropertyStatus) error {
	return &TransitionError{From: string(from), To: string(to)}
}

// TransitionError reports a status change the lifecycle does not allow.
type TransitionError struct {
	From, To string
}

func (e *TransitionError) Error() string {
	return ErrInvalidTransition.Error() + ": " + e.From + " -> " + e.To
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
