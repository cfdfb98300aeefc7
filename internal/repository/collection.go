package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/academic-scheduler/internal/apperrors"
	"github.com/harentsoaR/academic-scheduler/internal/models"
)

// Collection implements the CRUD operations shared by every resource.
type Collection[T any, P models.Document[T]] struct {
	coll      *mongo.Collection
	kind      string
	duplicate string
	now       func() time.Time
}

func newCollection[T any, P models.Document[T]](db *mongo.Database, name, kind, duplicate string) *Collection[T, P] {
	return &Collection[T, P]{
		coll:      db.Collection(name),
		kind:      kind,
		duplicate: duplicate,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (c *Collection[T, P]) Create(ctx context.Context, doc *T) error {
	P(doc).Stamp(c.now())
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return c.wrap("insert", err)
	}
	return nil
}

func (c *Collection[T, P]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

// Save replaces the stored document with doc.
func (c *Collection[T, P]) Save(ctx context.Context, doc *T) error {
	p := P(doc)
	p.Stamp(c.now())
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": p.Key()}, doc)
	if err != nil {
		return c.wrap("replace", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(c.kind + " not found")
	}
	return nil
}

func (c *Collection[T, P]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return c.wrap("delete", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound(c.kind + " not found")
	}
	return nil
}

func (c *Collection[T, P]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound(c.kind + " not found")
	}
	if err != nil {
		return nil, c.wrap("find", err)
	}
	return &doc, nil
}

func (c *Collection[T, P]) find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	cursor, err := c.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, c.wrap("find", err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, c.wrap("decode", err)
	}
	return docs, nil
}

func (c *Collection[T, P]) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, c.wrap("count", err)
	}
	return n, nil
}

func (c *Collection[T, P]) wrap(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) && c.duplicate != "" {
		return apperrors.Conflict(c.duplicate)
	}
	return fmt.Errorf("%s %s: %w", op, c.kind, err)
}
