package app

import (
	"github.com/shopspring/decimal"
)

// Actor is the authenticated caller as reported by the identity provider.
// UserID is opaque and only ever compared for ownership.
type Actor struct {
	UserID string
	Email  string
}

func (a Actor) Anonymous() bool { return a.UserID == "" }

type AddressDTO struct {
	Street         string   `json:"street" validate:"required,max=200"`
	City           string   `json:"city" validate:"required,max=100"`
	State          string   `json:"state" validate:"required,max=100"`
	Country        string   `json:"country" validate:"required,max=100"`
	PostalCode     string   `json:"postalCode" validate:"required,max=20"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	DisplayPrivacy bool     `json:"displayPrivacy"`
}

type FeaturesDTO struct {
	Bedrooms     int      `json:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms    int      `json:"bathrooms" validate:"gte=0,lte=100"`
	SquareMeters float64  `json:"squareMeters" validate:"gt=0"`
	LotSize      *float64 `json:"lotSize,omitempty" validate:"omitempty,gt=0"`
	YearBuilt    *int     `json:"yearBuilt,omitempty" validate:"omitempty,gte=1800"`
	Parking      *int     `json:"parking,omitempty" validate:"omitempty,gte=0"`
	Amenities    []string `json:"amenities,omitempty" validate:"omitempty,max=50,dive,required,max=60"`
}

type CreatePropertyDTO struct {
	Title          string          `json:"title" validate:"required,max=200"`
	Description    string          `json:"description" validate:"required,max=5000"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency" validate:"required,len=3"`
	PropertyType   string          `json:"propertyType" validate:"required,oneof=villa penthouse apartment house loft townhouse studio duplex"`
	Address        AddressDTO      `json:"address"`
	Features       FeaturesDTO     `json:"features"`
	Images         []string        `json:"images" validate:"required,min=1,max=50,dive,url"`
	OwnerID        string          `json:"-"`
	OrganizationID string          `json:"organizationId,omitempty"`
}

// UpdatePropertyDTO is a partial update; nil fields are left unchanged.
type UpdatePropertyDTO struct {
	Title        *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Currency     *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	PropertyType *string          `json:"propertyType,omitempty" validate:"omitempty,oneof=villa penthouse apartment house loft townhouse studio duplex"`
	Address      *AddressDTO      `json:"address,omitempty"`
	Features     *FeaturesDTO     `json:"features,omitempty"`
}

type ImageDTO struct {
	URL string `json:"url" validate:"required,url"`
}

type CreateOrganizationDTO struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,min=3,max=50"`
	Description string `json:"description" validate:"max=1000"`
}

type UpdateOrganizationDTO struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type BrandingDTO struct {
	LogoURL        string `json:"logoUrl,omitempty" validate:"omitempty,url"`
	PrimaryColor   string `json:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondaryColor,omitempty" validate:"omitempty,hexcolor"`
}

type NotificationsDTO struct {
	Email       bool `json:"email"`
	NewListings bool `json:"newListings"`
	Inquiries   bool `json:"inquiries"`
}

type SettingsDTO struct {
	IsPublic            bool              `json:"isPublic"`
	AllowPublicListings bool              `json:"allowPublicListings"`
	RequireApproval     bool              `json:"requireApproval"`
	Branding            *BrandingDTO      `json:"branding,omitempty"`
	Notifications       *NotificationsDTO `json:"notifications,omitempty"`
}

type ChangePlanDTO struct {
	Plan string `json:"plan" validate:"required,oneof=free basic premium enterprise"`
}
