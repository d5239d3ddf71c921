package domain

import "strings"

type PropertyType string

const (
	PropertyTypeVilla     PropertyType = "villa"
	PropertyTypePenthouse PropertyType = "penthouse"
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeLoft      PropertyType = "loft"
	PropertyTypeTownhouse PropertyType = "townhouse"
	PropertyTypeStudio    PropertyType = "studio"
	PropertyTypeDuplex    PropertyType = "duplex"
)

var propertyTypeLabels = map[PropertyType]string{
	PropertyTypeVilla:     "Villa",
	PropertyTypePenthouse: "Penthouse",
	PropertyTypeApartment: "Apartment",
	PropertyTypeHouse:     "House",
	PropertyTypeLoft:      "Loft",
	PropertyTypeTownhouse: "Townhouse",
	PropertyTypeStudio:    "Studio",
	PropertyTypeDuplex:    "Duplex",
}

func ParsePropertyType(s string) (PropertyType, error) {
	t := PropertyType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := propertyTypeLabels[t]; !ok {
		return "", invalid("property type", "is not supported: "+s)
	}
	return t, nil
}

func (t PropertyType) Label() string  { return propertyTypeLabels[t] }
func (t PropertyType) String() string { return string(t) }
