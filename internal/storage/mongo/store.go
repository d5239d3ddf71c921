// Package mongostore implements the domain repositories on MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"estate_hub/internal/adapters/observability"
)

const (
	propertiesCollection    = "properties"
	organizationsCollection = "organizations"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary and returns a Store bound to dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func (s *Store) Properties() *PropertyRepo {
	return &PropertyRepo{c: s.db.Collection(propertiesCollection)}
}

func (s *Store) Organizations() *OrganizationRepo {
	return &OrganizationRepo{c: s.db.Collection(organizationsCollection)}
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// slug index is what makes ErrSlugTaken race-free.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	props := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "organizationId", Value: 1}}},
		{Keys: bson.D{{Key: "address.city", Value: 1}}},
		{Keys: bson.D{{Key: "price.amount", Value: 1}}},
	}
	if _, err := s.db.Collection(propertiesCollection).Indexes().CreateMany(ctx, props); err != nil {
		return fmt.Errorf("properties indexes: %w", err)
	}
	orgs := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("slug_unique")},
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: 1}}},
	}
	if _, err := s.db.Collection(organizationsCollection).Indexes().CreateMany(ctx, orgs); err != nil {
		return fmt.Errorf("organizations indexes: %w", err)
	}
	return nil
}

// observe records the outcome of one collection call.
func observe(collection, op string, start time.Time, err error) {
	observability.ObserveStore(collection, op, err, time.Since(start))
}
