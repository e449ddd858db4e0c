package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"re-crawler/models"
)

// MongoWriter upserts listing records into a MongoDB collection keyed by
// (url, listed).
type MongoWriter struct {
	client   *mongo.Client
	listings *mongo.Collection
}

// NewMongoWriter connects, pings and creates the unique key index.
func NewMongoWriter(uri, database, collection string) (*MongoWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	mw := &MongoWriter{
		client:   client,
		listings: client.Database(database).Collection(collection),
	}

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}, {Key: "listed", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := mw.listings.Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: create index: %w", err)
	}

	return mw, nil
}

// recordDocument keeps private as true, false or "NA" like the flat record.
func recordDocument(r models.ListingRecord) bson.M {
	doc := bson.M{}
	for k, v := range r.Fields() {
		doc[k] = v
	}
	return doc
}

func (mw *MongoWriter) Write(ctx context.Context, r models.ListingRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"url": r.URL, "listed": r.Listed}
	update := bson.M{"$set": recordDocument(r)}

	if _, err := mw.listings.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongo: upsert %s: %w", r.URL, err)
	}
	return nil
}

func (mw *MongoWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return mw.client.Disconnect(ctx)
}
