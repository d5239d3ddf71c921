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

type PropertyRepo struct{ c *mongo.Collection }

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

func (r *PropertyRepo) Save(ctx context.Context, p domain.Property) error {
	start := time.Now()
	doc, err := toPropertyDoc(p)
	if err != nil {
		return err
	}
	_, err = r.c.InsertOne(ctx, doc)
	observe(propertiesCollection, "insert", start, err)
	return err
}

func (r *PropertyRepo) Update(ctx context.Context, p domain.Property) error {
	start := time.Now()
	doc, err := toPropertyDoc(p)
	if err != nil {
		return err
	}
	res, err := r.c.ReplaceOne(ctx, bson.M{"_id": p.ID()}, doc)
	observe(propertiesCollection, "replace", start, err)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepo) Delete(ctx context.Context, id string) error {
	start := time.Now()
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	observe(propertiesCollection, "delete", start, err)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepo) FindByID(ctx context.Context, id string) (domain.Property, error) {
	start := time.Now()
	var doc propertyDoc
	err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observe(propertiesCollection, "find_one", start, nil)
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	observe(propertiesCollection, "find_one", start, err)
	if err != nil {
		return domain.Property{}, err
	}
	return doc.toDomain()
}

func (r *PropertyRepo) FindByOwnerID(ctx context.Context, ownerID string) ([]domain.Property, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID}, options.Find().SetSort(newestFirst))
}

func (r *PropertyRepo) FindAll(ctx context.Context, f domain.PropertyFilters, limit, offset int) ([]domain.Property, error) {
	if offset < 0 || limit < 0 {
		return nil, domain.InvalidParam("offset", "must not be negative")
	}
	q, err := buildPropertyFilter(f)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(newestFirst).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, q, opts)
}

func (r *PropertyRepo) Count(ctx context.Context, f domain.PropertyFilters) (int64, error) {
	q, err := buildPropertyFilter(f)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := r.c.CountDocuments(ctx, q)
	observe(propertiesCollection, "count", start, err)
	return n, err
}

func (r *PropertyRepo) find(ctx context.Context, q bson.M, opts *options.FindOptions) ([]domain.Property, error) {
	start := time.Now()
	cur, err := r.c.Find(ctx, q, opts)
	if err != nil {
		observe(propertiesCollection, "find", start, err)
		return nil, err
	}
	var docs []propertyDoc
	err = cur.All(ctx, &docs)
	observe(propertiesCollection, "find", start, err)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Property, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode property %s: %w", d.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}
