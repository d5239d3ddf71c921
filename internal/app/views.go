package app

import (
	"time"

	"estate_hub/internal/domain"
)

// Read models returned to transports and stored in the cache.

type PriceView struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

type AddressView struct {
	Street         string   `json:"street,omitempty"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Country        string   `json:"country"`
	PostalCode     string   `json:"postalCode"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	DisplayPrivacy bool     `json:"displayPrivacy"`
}

type FeaturesView struct {
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	SquareMeters float64  `json:"squareMeters"`
	LotSize      *float64 `json:"lotSize,omitempty"`
	YearBuilt    *int     `json:"yearBuilt,omitempty"`
	Parking      *int     `json:"parking,omitempty"`
	Amenities    []string `json:"amenities"`
}

type PropertyView struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Price             PriceView    `json:"price"`
	PropertyType      string       `json:"propertyType"`
	PropertyTypeLabel string       `json:"propertyTypeLabel"`
	Address           AddressView  `json:"address"`
	Features          FeaturesView `json:"features"`
	Images            []string     `json:"images"`
	OwnerID           string       `json:"ownerId"`
	OrganizationID    string       `json:"organizationId"`
	Status            string       `json:"status"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

const displayLocale = "en-US"

func newAddressView(a domain.Address) AddressView {
	av := AddressView{
		Street:         a.Street(),
		City:           a.City(),
		State:          a.State(),
		Country:        a.Country(),
		PostalCode:     a.PostalCode(),
		DisplayPrivacy: a.DisplayPrivacy(),
	}
	if c, ok := a.Coordinates(); ok {
		lat, lon := c.Latitude(), c.Longitude()
		av.Latitude, av.Longitude = &lat, &lon
	}
	return av
}

// address turns a (possibly cached) view back into the domain value.
// Out-of-range coordinates are dropped.
func (v AddressView) address() domain.Address {
	params := domain.AddressParams{
		Street:         v.Street,
		City:           v.City,
		State:          v.State,
		Country:        v.Country,
		PostalCode:     v.PostalCode,
		DisplayPrivacy: v.DisplayPrivacy,
	}
	if v.Latitude != nil && v.Longitude != nil {
		if c, err := domain.NewCoordinates(*v.Latitude, *v.Longitude); err == nil {
			params.Coordinates = &c
		}
	}
	return domain.RestoreAddress(params)
}

func NewPropertyView(p domain.Property) PropertyView {
	f := p.Features()
	amen := f.Amenities()
	if amen == nil {
		amen = []string{}
	}
	return PropertyView{
		ID:          p.ID(),
		Title:       p.Title(),
		Description: p.Description(),
		Price: PriceView{
			Amount:    p.Price().Amount().String(),
			Currency:  p.Price().Currency(),
			Formatted: p.Price().Format(displayLocale),
		},
		PropertyType:      p.Type().String(),
		PropertyTypeLabel: p.Type().Label(),
		Address:           newAddressView(p.Address()),
		Features: FeaturesView{
			Bedrooms:     f.Bedrooms(),
			Bathrooms:    f.Bathrooms(),
			SquareMeters: f.SquareMeters(),
			LotSize:      f.LotSize(),
			YearBuilt:    f.YearBuilt(),
			Parking:      f.Parking(),
			Amenities:    amen,
		},
		Images:         p.Images(),
		OwnerID:        p.OwnerID(),
		OrganizationID: p.OrganizationID(),
		Status:         string(p.Status()),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

// ForViewer applies the address's public view for everyone but the owner.
func (v PropertyView) ForViewer(userID string) PropertyView {
	if userID != "" && userID == v.OwnerID {
		return v
	}
	v.Address = newAddressView(v.Address.address().PublicView())
	return v
}

type PropertiesPageView struct {
	Properties []PropertyView `json:"properties"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

func NewPropertiesPageView(pg PropertiesPage, viewerID string) PropertiesPageView {
	out := PropertiesPageView{
		Properties: make([]PropertyView, 0, len(pg.Properties)),
		Total:      pg.Total,
		Page:       pg.Page,
		Limit:      pg.Limit,
		TotalPages: pg.TotalPages,
	}
	for _, p := range pg.Properties {
		out.Properties = append(out.Properties, NewPropertyView(p).ForViewer(viewerID))
	}
	return out
}

func NewPropertyViews(ps []domain.Property) []PropertyView {
	out := make([]PropertyView, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPropertyView(p))
	}
	return out
}

type OrganizationView struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description"`
	OwnerID       string      `json:"ownerId"`
	Status        string      `json:"status"`
	Plan          string      `json:"plan"`
	MaxProperties int         `json:"maxProperties"`
	Settings      SettingsDTO `json:"settings"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func NewOrganizationView(o domain.Organization) OrganizationView {
	s := o.Settings()
	sv := SettingsDTO{
		IsPublic:            s.IsPublic,
		AllowPublicListings: s.AllowPublicListings,
		RequireApproval:     s.RequireApproval,
	}
	if s.Branding != nil {
		sv.Branding = &BrandingDTO{
			LogoURL:        s.Branding.LogoURL,
			PrimaryColor:   s.Branding.PrimaryColor,
			SecondaryColor: s.Branding.SecondaryColor,
		}
	}
	if s.Notifications != nil {
		sv.Notifications = &NotificationsDTO{
			Email:       s.Notifications.Email,
			NewListings: s.Notifications.NewListings,
			Inquiries:   s.Notifications.Inquiries,
		}
	}
	return OrganizationView{
		ID:            o.ID(),
		Name:          o.Name(),
		Slug:          o.Slug(),
		Description:   o.Description(),
		OwnerID:       o.OwnerID(),
		Status:        string(o.Status()),
		Plan:          string(o.Plan()),
		MaxProperties: o.MaxPropertiesLimit(),
		Settings:      sv,
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}
}

func NewOrganizationViews(os []domain.Organization) []OrganizationView {
	out := make([]OrganizationView, 0, len(os))
	for _, o := range os {
		out = append(out, NewOrganizationView(o))
	}
	return out
}
