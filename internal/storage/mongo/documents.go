package mongostore

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"estate_hub/internal/domain"
)

type priceDoc struct {
	Amount   primitive.Decimal128 `bson:"amount"`
	Currency string               `bson:"currency"`
}

type coordinatesDoc struct {
	Latitude  float64 `bson:"lat"`
	Longitude float64 `bson:"lng"`
}

type addressDoc struct {
	Street         string          `bson:"street"`
	City           string          `bson:"city"`
	State          string          `bson:"state"`
	Country        string          `bson:"country"`
	PostalCode     string          `bson:"postalCode"`
	Coordinates    *coordinatesDoc `bson:"coordinates,omitempty"`
	DisplayPrivacy bool            `bson:"displayPrivacy"`
}

type featuresDoc struct {
	Bedrooms     int      `bson:"bedrooms"`
	Bathrooms    int      `bson:"bathrooms"`
	SquareMeters float64  `bson:"squareMeters"`
	LotSize      *float64 `bson:"lotSize,omitempty"`
	YearBuilt    *int     `bson:"yearBuilt,omitempty"`
	Parking      *int     `bson:"parking,omitempty"`
	Amenities    []string `bson:"amenities"`
	// lower-cased copy the amenity filter matches on
	AmenityKeys []string `bson:"amenityKeys"`
}

type propertyDoc struct {
	ID             string      `bson:"_id"`
	Title          string      `bson:"title"`
	Description    string      `bson:"description"`
	Price          priceDoc    `bson:"price"`
	PropertyType   string      `bson:"propertyType"`
	Address        addressDoc  `bson:"address"`
	Features       featuresDoc `bson:"features"`
	Images         []string    `bson:"images"`
	OwnerID        string      `bson:"ownerId"`
	OrganizationID string      `bson:"organizationId"`
	Status         string      `bson:"status"`
	CreatedAt      time.Time   `bson:"createdAt"`
	UpdatedAt      time.Time   `bson:"updatedAt"`
}

func toPropertyDoc(p domain.Property) (propertyDoc, error) {
	amount, err := primitive.ParseDecimal128(p.Price().Amount().String())
	if err != nil {
		return propertyDoc{}, fmt.Errorf("encode price: %w", err)
	}
	a := p.Address()
	ad := addressDoc{
		Street:         a.Street(),
		City:           a.City(),
		State:          a.State(),
		Country:        a.Country(),
		PostalCode:     a.PostalCode(),
		DisplayPrivacy: a.DisplayPrivacy(),
	}
	if c, ok := a.Coordinates(); ok {
		ad.Coordinates = &coordinatesDoc{Latitude: c.Latitude(), Longitude: c.Longitude()}
	}
	f := p.Features()
	amen := f.Amenities()
	if amen == nil {
		amen = []string{}
	}
	keys := make([]string, 0, len(amen))
	for _, x := range amen {
		keys = append(keys, strings.ToLower(x))
	}
	return propertyDoc{
		ID:           p.ID(),
		Title:        p.Title(),
		Description:  p.Description(),
		Price:        priceDoc{Amount: amount, Currency: p.Price().Currency()},
		PropertyType: string(p.Type()),
		Address:      ad,
		Features: featuresDoc{
			Bedrooms:     f.Bedrooms(),
			Bathrooms:    f.Bathrooms(),
			SquareMeters: f.SquareMeters(),
			LotSize:      f.LotSize(),
			YearBuilt:    f.YearBuilt(),
			Parking:      f.Parking(),
			Amenities:    amen,
			AmenityKeys:  keys,
		},
		Images:         p.Images(),
		OwnerID:        p.OwnerID(),
		OrganizationID: p.OrganizationID(),
		Status:         string(p.Status()),
		CreatedAt:      p.CreatedAt().UTC(),
		UpdatedAt:      p.UpdatedAt().UTC(),
	}, nil
}

// toDomain rebuilds the aggregate through the domain constructors, so a
// document that violates an invariant surfaces as an error instead of a
// half-valid Property.
func (d propertyDoc) toDomain() (domain.Property, error) {
	amount, err := decimal.NewFromString(d.Price.Amount.String())
	if err != nil {
		return domain.Property{}, fmt.Errorf("decode price of %s: %w", d.ID, err)
	}
	price, err := domain.NewPrice(amount, d.Price.Currency)
	if err != nil {
		return domain.Property{}, err
	}
	ap := domain.AddressParams{
		Street:         d.Address.Street,
		City:           d.Address.City,
		State:          d.Address.State,
		Country:        d.Address.Country,
		PostalCode:     d.Address.PostalCode,
		DisplayPrivacy: d.Address.DisplayPrivacy,
	}
	if c := d.Address.Coordinates; c != nil {
		coords, err := domain.NewCoordinates(c.Latitude, c.Longitude)
		if err != nil {
			return domain.Property{}, err
		}
		ap.Coordinates = &coords
	}
	addr, err := domain.NewAddress(ap)
	if err != nil {
		return domain.Property{}, err
	}
	feats, err := domain.NewPropertyFeatures(domain.FeaturesParams{
		Bedrooms:     d.Features.Bedrooms,
		Bathrooms:    d.Features.Bathrooms,
		SquareMeters: d.Features.SquareMeters,
		LotSize:      d.Features.LotSize,
		YearBuilt:    d.Features.YearBuilt,
		Parking:      d.Features.Parking,
		Amenities:    d.Features.Amenities,
	})
	if err != nil {
		return domain.Property{}, err
	}
	return domain.RestoreProperty(domain.PropertySnapshot{
		ID: d.ID,
		PropertyParams: domain.PropertyParams{
			Title:          d.Title,
			Description:    d.Description,
			Price:          price,
			Type:           domain.PropertyType(d.PropertyType),
			Address:        addr,
			Features:       feats,
			Images:         d.Images,
			OwnerID:        d.OwnerID,
			OrganizationID: d.OrganizationID,
		},
		Status:    domain.PropertyStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	})
}

type brandingDoc struct {
	LogoURL        string `bson:"logoUrl,omitempty"`
	PrimaryColor   string `bson:"primaryColor,omitempty"`
	SecondaryColor string `bson:"secondaryColor,omitempty"`
}

type notificationsDoc struct {
	Email       bool `bson:"email"`
	NewListings bool `bson:"newListings"`
	Inquiries   bool `bson:"inquiries"`
}

type settingsDoc struct {
	IsPublic            bool              `bson:"isPublic"`
	AllowPublicListings bool              `bson:"allowPublicListings"`
	RequireApproval     bool              `bson:"requireApproval"`
	Branding            *brandingDoc      `bson:"branding,omitempty"`
	Notifications       *notificationsDoc `bson:"notifications,omitempty"`
}

type organizationDoc struct {
	ID          string      `bson:"_id"`
	Name        string      `bson:"name"`
	Slug        string      `bson:"slug"`
	Description string      `bson:"description"`
	OwnerID     string      `bson:"ownerId"`
	Status      string      `bson:"status"`
	Plan        string      `bson:"plan"`
	Settings    settingsDoc `bson:"settings"`
	CreatedAt   time.Time   `bson:"createdAt"`
	UpdatedAt   time.Time   `bson:"updatedAt"`
}

func toOrganizationDoc(o domain.Organization) organizationDoc {
	s := o.Settings()
	sd := settingsDoc{
		IsPublic:            s.IsPublic,
		AllowPublicListings: s.AllowPublicListings,
		RequireApproval:     s.RequireApproval,
	}
	if b := s.Branding; b != nil {
		sd.Branding = &brandingDoc{LogoURL: b.LogoURL, PrimaryColor: b.PrimaryColor, SecondaryColor: b.SecondaryColor}
	}
	if n := s.Notifications; n != nil {
		sd.Notifications = &notificationsDoc{Email: n.Email, NewListings: n.NewListings, Inquiries: n.Inquiries}
	}
	return organizationDoc{
		ID:          o.ID(),
		Name:        o.Name(),
		Slug:        o.Slug(),
		Description: o.Description(),
		OwnerID:     o.OwnerID(),
		Status:      string(o.Status()),
		Plan:        string(o.Plan()),
		Settings:    sd,
		CreatedAt:   o.CreatedAt().UTC(),
		UpdatedAt:   o.UpdatedAt().UTC(),
	}
}

func (d organizationDoc) toDomain() (domain.Organization, error) {
	s := domain.OrganizationSettings{
		IsPublic:            d.Settings.IsPublic,
		AllowPublicListings: d.Settings.AllowPublicListings,
		RequireApproval:     d.Settings.RequireApproval,
	}
	if b := d.Settings.Branding; b != nil {
		s.Branding = &domain.Branding{LogoURL: b.LogoURL, PrimaryColor: b.PrimaryColor, SecondaryColor: b.SecondaryColor}
	}
	if n := d.Settings.Notifications; n != nil {
		s.Notifications = &domain.NotificationPreferences{Email: n.Email, NewListings: n.NewListings, Inquiries: n.Inquiries}
	}
	return domain.RestoreOrganization(domain.OrganizationSnapshot{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		OwnerID:     d.OwnerID,
		Status:      domain.OrganizationStatus(d.Status),
		Plan:        domain.Plan(d.Plan),
		Settings:    s,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	})
}
