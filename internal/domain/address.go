package domain

import (
	"strings"
)

type Coordinates struct {
	latitude  float64
	longitude float64
}

func NewCoordinates(lat, lon float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, invalid("latitude", "must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return Coordinates{}, invalid("longitude", "must be between -180 and 180")
	}
	return Coordinates{latitude: lat, longitude: lon}, nil
}

func (c Coordinates) Latitude() float64  { return c.latitude }
func (c Coordinates) Longitude() float64 { return c.longitude }

// AddressParams carries the raw input for NewAddress.
type AddressParams struct {
	Street         string
	City           string
	State          string
	Country        string
	PostalCode     string
	Coordinates    *Coordinates
	DisplayPrivacy bool
}

type Address struct {
	street         string
	city           string
	state          string
	country        string
	postalCode     string
	coordinates    *Coordinates
	displayPrivacy bool
}

func NewAddress(p AddressParams) (Address, error) {
	fields := []struct{ name, val string }{
		{"street", p.Street},
		{"city", p.City},
		{"state", p.State},
		{"country", p.Country},
		{"postal code", p.PostalCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.val) == "" {
			return Address{}, invalid(f.name, "is required")
		}
	}
	a := Address{
		street:         strings.TrimSpace(p.Street),
		city:           strings.TrimSpace(p.City),
		state:          strings.TrimSpace(p.State),
		country:        strings.TrimSpace(p.Country),
		postalCode:     strings.TrimSpace(p.PostalCode),
		displayPrivacy: p.DisplayPrivacy,
	}
	if p.Coordinates != nil {
		c := *p.Coordinates
		a.coordinates = &c
	}
	return a, nil
}

// RestoreAddress rebuilds an address from trusted data without validation.
func RestoreAddress(p AddressParams) Address {
	a := Address{
		street:         p.Street,
		city:           p.City,
		state:          p.State,
		country:        p.Country,
		postalCode:     p.PostalCode,
		displayPrivacy: p.DisplayPrivacy,
	}
	if p.Coordinates != nil {
		c := *p.Coordinates
		a.coordinates = &c
	}
	return a
}

func (a Address) Street() string       { return a.street }
func (a Address) City() string         { return a.city }
func (a Address) State() string        { return a.state }
func (a Address) Country() string      { return a.country }
func (a Address) PostalCode() string   { return a.postalCode }
func (a Address) DisplayPrivacy() bool { return a.displayPrivacy }

func (a Address) Coordinates() (Coordinates, bool) {
	if a.coordinates == nil {
		return Coordinates{}, false
	}
	return *a.coordinates, true
}

// PublicView drops the street and exact location when the owner asked for
// display privacy.
func (a Address) PublicView() Address {
	if !a.displayPrivacy {
		return a
	}
	out := a
	out.street = ""
	out.coordinates = nil
	return out
}

func (a Address) Equals(o Address) bool {
	if a.street != o.street || a.city != o.city || a.state != o.state ||
		a.country != o.country || a.postalCode != o.postalCode || a.displayPrivacy != o.displayPrivacy {
		return false
	}
	if (a.coordinates == nil) != (o.coordinates == nil) {
		return false
	}
	return a.coordinates == nil || *a.coordinates == *o.coordinates
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
