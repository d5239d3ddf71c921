package domain

import (
	"slices"
	"strings"
	"time"
)

const minYearBuilt = 1800

type FeaturesParams struct {
	Bedrooms     int
	Bathrooms    int
	SquareMeters float64
	LotSize      *float64
	YearBuilt    *int
	Parking      *int
	Amenities    []string
}

// PropertyFeatures describes the physical characteristics of a listing.
type PropertyFeatures struct {
	bedrooms     int
	bathrooms    int
	squareMeters float64
	lotSize      *float64
	yearBuilt    *int
	parking      *int
	amenities    []string
}

func NewPropertyFeatures(p FeaturesParams) (PropertyFeatures, error) {
	if p.Bedrooms < 0 {
		return PropertyFeatures{}, invalid("bedrooms", "must not be negative")
	}
	if p.Bathrooms < 0 {
		return PropertyFeatures{}, invalid("bathrooms", "must not be negative")
	}
	if p.SquareMeters <= 0 {
		return PropertyFeatures{}, invalid("square meters", "must be positive")
	}
	if p.LotSize != nil && *p.LotSize <= 0 {
		return PropertyFeatures{}, invalid("lot size", "must be positive")
	}
	if p.YearBuilt != nil && (*p.YearBuilt < minYearBuilt || *p.YearBuilt > time.Now().Year()) {
		return PropertyFeatures{}, invalid("year built", "is out of range")
	}
	if p.Parking != nil && *p.Parking < 0 {
		return PropertyFeatures{}, invalid("parking", "must not be negative")
	}
	f := PropertyFeatures{
		bedrooms:     p.Bedrooms,
		bathrooms:    p.Bathrooms,
		squareMeters: p.SquareMeters,
		lotSize:      clonePtr(p.LotSize),
		yearBuilt:    clonePtr(p.YearBuilt),
		parking:      clonePtr(p.Parking),
	}
	for _, a := range p.Amenities {
		f.amenities = addAmenity(f.amenities, a)
	}
	return f, nil
}

func (f PropertyFeatures) Bedrooms() int         { return f.bedrooms }
func (f PropertyFeatures) Bathrooms() int        { return f.bathrooms }
func (f PropertyFeatures) SquareMeters() float64 { return f.squareMeters }
func (f PropertyFeatures) LotSize() *float64     { return clonePtr(f.lotSize) }
func (f PropertyFeatures) YearBuilt() *int       { return clonePtr(f.yearBuilt) }
func (f PropertyFeatures) Parking() *int         { return clonePtr(f.parking) }
func (f PropertyFeatures) Amenities() []string   { return slices.Clone(f.amenities) }

func (f PropertyFeatures) HasAmenity(a string) bool {
	return amenityIndex(f.amenities, a) >= 0
}

func (f PropertyFeatures) AddAmenity(a string) PropertyFeatures {
	out := f.clone()
	out.amenities = addAmenity(out.amenities, a)
	return out
}

func (f PropertyFeatures) RemoveAmenity(a string) PropertyFeatures {
	out := f.clone()
	if i := amenityIndex(out.amenities, a); i >= 0 {
		out.amenities = slices.Delete(out.amenities, i, i+1)
	}
	return out
}

func (f PropertyFeatures) Equals(o PropertyFeatures) bool {
	return f.bedrooms == o.bedrooms &&
		f.bathrooms == o.bathrooms &&
		f.squareMeters == o.squareMeters &&
		ptrEqual(f.lotSize, o.lotSize) &&
		ptrEqual(f.yearBuilt, o.yearBuilt) &&
		ptrEqual(f.parking, o.parking) &&
		slices.Equal(f.amenities, o.amenities)
}

func (f PropertyFeatures) clone() PropertyFeatures {
	out := f
	out.amenities = slices.Clone(f.amenities)
	return out
}

// amenities compare trimmed and case-insensitive; the first spelling wins.
func amenityIndex(list []string, a string) int {
	a = strings.TrimSpace(a)
	return slices.IndexFunc(list, func(x string) bool { return strings.EqualFold(x, a) })
}

func addAmenity(list []string, a string) []string {
	a = strings.TrimSpace(a)
	if a == "" || amenityIndex(list, a) >= 0 {
		return list
	}
	return append(list, a)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
