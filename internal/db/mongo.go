package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoIndexes lists the indexes each collection needs. Unique indexes back
// the forever duplicate policies; the audits index only serves the window lookup.
var mongoIndexes = map[string][]mongo.IndexModel{
	"newsletters": {{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}},
	"meetings": {{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}},
	"packages": {{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "package", Value: 1}},
		Options: options.Index().SetUnique(true),
	}},
	"users": {{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}},
	"admins": {{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}},
	"audits": {{
		Keys: bson.D{{Key: "email", Value: 1}, {Key: "producturl", Value: 1}, {Key: "created_at", Value: -1}},
	}},
}

// InitMongo connects to uri, checks the connection and ensures indexes on
// the named database.
func InitMongo(ctx context.Context, uri, name string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(name)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return client, db, nil
}

// EnsureIndexes creates the collection indexes. Existing identical indexes
// are left alone by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, idx := range mongoIndexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
