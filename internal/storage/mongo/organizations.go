package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estate_hub/internal/domain"
)

type OrganizationRepo struct{ c *mongo.Collection }

func (r *OrganizationRepo) Save(ctx context.Context, o domain.Organization) error {
	start := time.Now()
	_, err := r.c.InsertOne(ctx, toOrganizationDoc(o))
	observe(organizationsCollection, "insert", start, err)
	return slugErr(o.Slug(), err)
}

func (r *OrganizationRepo) Update(ctx context.Context, o domain.Organization) error {
	start := time.Now()
	res, err := r.c.ReplaceOne(ctx, bson.M{"_id": o.ID()}, toOrganizationDoc(o))
	observe(organizationsCollection, "replace", start, err)
	if err != nil {
		return slugErr(o.Slug(), err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

func (r *OrganizationRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	observe(organizationsCollection, "delete", start, err)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

func (r *OrganizationRepo) FindByID(ctx context.Context, id string) (domain.Organization, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *OrganizationRepo) FindBySlug(ctx context.Context, slug string) (domain.Organization, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

// FindByOwnerID returns the owner's organizations, oldest first.
func (r *OrganizationRepo) FindByOwnerID(ctx context.Context, ownerID string) ([]domain.Organization, error) {
	start := time.Now()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.c.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		observe(organizationsCollection, "find", start, err)
		return nil, err
	}
	var docs []organizationDoc
	err = cur.All(ctx, &docs)
	observe(organizationsCollection, "find", start, err)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Organization, 0, len(docs))
	for _, d := range docs {
		o, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode organization %s: %w", d.ID, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrganizationRepo) IsSlugAvailable(ctx context.Context, slug string) (bool, error) {
	start := time.Now()
	n, err := r.c.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	observe(organizationsCollection, "count", start, err)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (r *OrganizationRepo) findOne(ctx context.Context, q bson.M) (domain.Organization, error) {
	start := time.Now()
	var doc organizationDoc
	err := r.c.FindOne(ctx, q).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observe(organizationsCollection, "find_one", start, nil)
		return domain.Organization{}, domain.ErrOrganizationNotFound
	}
	observe(organizationsCollection, "find_one", start, err)
	if err != nil {
		return domain.Organization{}, err
	}
	return doc.toDomain()
}

// slugErr maps a unique-index violation to ErrSlugTaken; slug is the only
// unique key besides _id.
func slugErr(slug string, err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%q: %w", slug, domain.ErrSlugTaken)
	}
	return err
}
