package app

import (
	"errors"
	"fmt"

	"estate_hub/internal/domain"
)

/********** DTO -> value objects **********/

func toAddress(d AddressDTO) (domain.Address, error) {
	params := domain.AddressParams{
		Street:         d.Street,
		City:           d.City,
		State:          d.State,
		Country:        d.Country,
		PostalCode:     d.PostalCode,
		DisplayPrivacy: d.DisplayPrivacy,
	}
	switch {
	case d.Latitude != nil && d.Longitude != nil:
		c, err := domain.NewCoordinates(*d.Latitude, *d.Longitude)
		if err != nil {
			return domain.Address{}, err
		}
		params.Coordinates = &c
	case d.Latitude != nil || d.Longitude != nil:
		return domain.Address{}, fmt.Errorf("%w: coordinates need both latitude and longitude", domain.ErrValidation)
	}
	return domain.NewAddress(params)
}

func toFeatures(d FeaturesDTO) (domain.PropertyFeatures, error) {
	return domain.NewPropertyFeatures(domain.FeaturesParams{
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		SquareMeters: d.SquareMeters,
		LotSize:      d.LotSize,
		YearBuilt:    d.YearBuilt,
		Parking:      d.Parking,
		Amenities:    d.Amenities,
	})
}

func toPropertyParams(d CreatePropertyDTO) (domain.PropertyParams, error) {
	price, err := domain.NewPrice(d.Price, d.Currency)
	if err != nil {
		return domain.PropertyParams{}, err
	}
	pt, err := domain.ParsePropertyType(d.PropertyType)
	if err != nil {
		return domain.PropertyParams{}, err
	}
	addr, err := toAddress(d.Address)
	if err != nil {
		return domain.PropertyParams{}, err
	}
	feats, err := toFeatures(d.Features)
	if err != nil {
		return domain.PropertyParams{}, err
	}
	return domain.PropertyParams{
		Title:          d.Title,
		Description:    d.Description,
		Price:          price,
		Type:           pt,
		Address:        addr,
		Features:       feats,
		Images:         d.Images,
		OwnerID:        d.OwnerID,
		OrganizationID: d.OrganizationID,
	}, nil
}

// toDetailsUpdate resolves a partial update against the current property;
// a lone currency or price change keeps the other half of the price.
func toDetailsUpdate(cur domain.Property, d UpdatePropertyDTO) (domain.DetailsUpdate, error) {
	u := domain.DetailsUpdate{Title: d.Title, Description: d.Description}
	if d.Price != nil || d.Currency != nil {
		amount, cy := cur.Price().Amount(), cur.Price().Currency()
		if d.Price != nil {
			amount = *d.Price
		}
		if d.Currency != nil {
			cy = *d.Currency
		}
		p, err := domain.NewPrice(amount, cy)
		if err != nil {
			return u, err
		}
		u.Price = &p
	}
	if d.PropertyType != nil {
		pt, err := domain.ParsePropertyType(*d.PropertyType)
		if err != nil {
			return u, err
		}
		u.Type = &pt
	}
	if d.Address != nil {
		a, err := toAddress(*d.Address)
		if err != nil {
			return u, err
		}
		u.Address = &a
	}
	if d.Features != nil {
		f, err := toFeatures(*d.Features)
		if err != nil {
			return u, err
		}
		u.Features = &f
	}
	return u, nil
}

func toSettings(d SettingsDTO) domain.OrganizationSettings {
	s := domain.OrganizationSettings{
		IsPublic:            d.IsPublic,
		AllowPublicListings: d.AllowPublicListings,
		RequireApproval:     d.RequireApproval,
	}
	if d.Branding != nil {
		s.Branding = &domain.Branding{
			LogoURL:        d.Branding.LogoURL,
			PrimaryColor:   d.Branding.PrimaryColor,
			SecondaryColor: d.Branding.SecondaryColor,
		}
	}
	if d.Notifications != nil {
		s.Notifications = &domain.NotificationPreferences{
			Email:       d.Notifications.Email,
			NewListings: d.Notifications.NewListings,
			Inquiries:   d.Notifications.Inquiries,
		}
	}
	return s
}

// wrapValidation prefixes value-object failures with the operation; other
// errors pass through untouched.
func wrapValidation(op string, err error) error {
	if errors.Is(err, domain.ErrValidation) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return err
}
