package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo owns the client and the application database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect initializes the database connection and verifies it with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

// Ping is used by the health endpoint.
func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

type index struct {
	collection string
	model      mongo.IndexModel
}

var indexes = []index{
	{"users", mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}},
	{"projects", mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}}},
	{"projects", mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}},
	{"events", mongo.IndexModel{Keys: bson.D{{Key: "published", Value: 1}, {Key: "date", Value: -1}}}},
	{"skillings", mongo.IndexModel{Keys: bson.D{{Key: "published", Value: 1}, {Key: "createdAt", Value: -1}}}},
	{"orders", mongo.IndexModel{Keys: bson.D{{Key: "user.userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
	{"orders", mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}},
	{"submissions", mongo.IndexModel{Keys: bson.D{{Key: "submittedAt", Value: -1}}}},
}

// EnsureIndexes creates the indexes every query path relies on. It is
// idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, ix := range indexes {
		if _, err := db.Collection(ix.collection).Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("index on %s: %w", ix.collection, err)
		}
	}
	return nil
}
