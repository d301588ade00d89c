// Package mongostore is the MongoDB implementation of the record store.
// Every form lives in its own collection; identifiers are ObjectIDs surfaced
// to callers as hex strings.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/sellharbor/internal/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalidID is returned for identifiers that are not ObjectID hex strings.
var ErrInvalidID = common.NewInvalidInput("Invalid id")

// KeyFunc builds the duplicate lookup filter for a document.
type KeyFunc[E any] func(doc *E) bson.D

// Collection stores documents of type E in one MongoDB collection.
type Collection[E any] struct {
	coll *mongo.Collection
	key  KeyFunc[E]
}

// NewCollection wraps the named collection of db. key may be nil for forms
// without a duplicate policy.
func NewCollection[E any](db *mongo.Database, name string, key func(*E) bson.D) *Collection[E] {
	return &Collection[E]{coll: db.Collection(name), key: key}
}

// FindDuplicate reports whether a document with the same key exists. A
// non-zero since restricts the match to documents created at or after it.
func (c *Collection[E]) FindDuplicate(ctx context.Context, doc *E, since time.Time) (bool, error) {
	if c.key == nil {
		return false, nil
	}
	filter := c.key(doc)
	if !since.IsZero() {
		filter = append(filter, bson.E{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}})
	}

	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	err := c.coll.FindOne(ctx, filter, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", c.coll.Name(), err)
	}
	return true, nil
}

// Insert stores doc and returns the generated identifier.
func (c *Collection[E]) Insert(ctx context.Context, doc *E) (string, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", writeErr("insert "+c.coll.Name(), err)
	}
	return hexID(res.InsertedID), nil
}

// List returns every document, oldest first.
func (c *Collection[E]) List(ctx context.Context) ([]E, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := c.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.coll.Name(), err)
	}
	out := []E{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

// Delete removes the document with the given id.
func (c *Collection[E]) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func hexID(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}

func writeErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, common.ErrDuplicateKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}
