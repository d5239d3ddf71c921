package mongostore

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"estate_hub/internal/domain"
)

// buildPropertyFilter translates PropertyFilters into a query document with
// the same semantics as PropertyFilters.Matches.
func buildPropertyFilter(f domain.PropertyFilters) (bson.M, error) {
	q := bson.M{}
	if s := f.EffectiveStatus(); s != nil {
		q["status"] = string(*s)
	}
	if f.OwnerID != nil && *f.OwnerID != "" {
		q["ownerId"] = *f.OwnerID
	}
	if f.OrganizationID != nil && *f.OrganizationID != "" {
		q["organizationId"] = *f.OrganizationID
	}

	price := bson.M{}
	if f.MinPrice != nil {
		d, err := primitive.ParseDecimal128(f.MinPrice.String())
		if err != nil {
			return nil, err
		}
		price["$gte"] = d
	}
	if f.MaxPrice != nil {
		d, err := primitive.ParseDecimal128(f.MaxPrice.String())
		if err != nil {
			return nil, err
		}
		price["$lte"] = d
	}
	if len(price) > 0 {
		q["price.amount"] = price
	}

	if f.Type != nil {
		q["propertyType"] = string(*f.Type)
	}
	if f.City != nil {
		q["address.city"] = exactFold(*f.City)
	}
	if f.State != nil {
		q["address.state"] = exactFold(*f.State)
	}
	if f.MinBedrooms != nil {
		q["features.bedrooms"] = bson.M{"$gte": *f.MinBedrooms}
	}
	if f.MinBathrooms != nil {
		q["features.bathrooms"] = bson.M{"$gte": *f.MinBathrooms}
	}
	if len(f.Amenities) > 0 {
		keys := make([]string, 0, len(f.Amenities))
		for _, a := range f.Amenities {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				keys = append(keys, a)
			}
		}
		if len(keys) > 0 {
			q["features.amenityKeys"] = bson.M{"$in": keys}
		}
	}
	return q, nil
}

// exactFold matches the whole value ignoring case.
func exactFold(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(v)) + "$", Options: "i"}
}
