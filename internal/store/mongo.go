package store

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/arzan03/ClubHub/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultSortField = "createdAt"

// MongoCollection implements Collection over a MongoDB collection.
type MongoCollection[T any] struct {
	c *mongo.Collection
}

func NewMongo[T any](c *mongo.Collection) *MongoCollection[T] {
	return &MongoCollection[T]{c: c}
}

// NewMongoCollections wires one MongoCollection per entity in db.
func NewMongoCollections(db *mongo.Database) Collections {
	return Collections{
		Users:       NewMongo[models.User](db.Collection("users")),
		Products:    NewMongo[models.Product](db.Collection("products")),
		Events:      NewMongo[models.Event](db.Collection("events")),
		Skillings:   NewMongo[models.Skilling](db.Collection("skillings")),
		Submissions: NewMongo[models.Submission](db.Collection("submissions")),
		Projects:    NewMongo[models.Project](db.Collection("projects")),
		Orders:      NewMongo[models.Order](db.Collection("orders")),
	}
}

func (m *MongoCollection[T]) Insert(ctx context.Context, doc *T) error {
	if _, err := m.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (m *MongoCollection[T]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var out T
	if err := m.c.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (m *MongoCollection[T]) Find(ctx context.Context, q Query) ([]T, error) {
	cursor, err := m.c.Find(ctx, q.Filter(), q.FindOptions())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoCollection[T]) Count(ctx context.Context, q Query) (int64, error) {
	return m.c.CountDocuments(ctx, q.Filter())
}

func (m *MongoCollection[T]) Update(ctx context.Context, id primitive.ObjectID, match Match, set Fields) (*T, error) {
	return m.findOneAndUpdate(ctx, id, match, bson.M{"$set": bson.M(set)})
}

func (m *MongoCollection[T]) Increment(ctx context.Context, id primitive.ObjectID, match Match, field string, delta int) (*T, error) {
	return m.findOneAndUpdate(ctx, id, match, bson.M{"$inc": bson.M{field: delta}})
}

func (m *MongoCollection[T]) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, match Match, update bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out T
	err := m.c.FindOneAndUpdate(ctx, idFilter(id, match), update, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, m.missing(ctx, id, match)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &out, nil
}

func (m *MongoCollection[T]) Replace(ctx context.Context, id primitive.ObjectID, match Match, doc *T) error {
	res, err := m.c.ReplaceOne(ctx, idFilter(id, match), doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return m.missing(ctx, id, match)
	}
	return nil
}

func (m *MongoCollection[T]) Delete(ctx context.Context, id primitive.ObjectID, match Match) (*T, error) {
	var out T
	err := m.c.FindOneAndDelete(ctx, idFilter(id, match)).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, m.missing(ctx, id, match)
		}
		return nil, err
	}
	return &out, nil
}

// missing tells a failed conditional write apart: the id is unknown, or the
// document exists but no longer matches.
func (m *MongoCollection[T]) missing(ctx context.Context, id primitive.ObjectID, match Match) error {
	if len(match) == 0 {
		return ErrNotFound
	}
	n, err := m.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func idFilter(id primitive.ObjectID, match Match) bson.M {
	f := matchFilter(match)
	f["_id"] = id
	return f
}

func matchFilter(m Match) bson.M {
	f := bson.M{}
	for k, v := range m {
		switch v := v.(type) {
		case AtLeast:
			f[k] = bson.M{"$gte": v.N}
		default:
			f[k] = v
		}
	}
	return f
}

// Filter translates q into a MongoDB filter document.
func (q Query) Filter() bson.M {
	f := matchFilter(q.Where)

	if s := strings.TrimSpace(q.Search); s != "" && len(q.SearchFields) > 0 {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		or := make(bson.A, 0, len(q.SearchFields))
		for _, field := range q.SearchFields {
			or = append(or, bson.M{field: re})
		}
		f["$or"] = or
	}

	if r := q.Range; r != nil && r.Field != "" && (r.From != nil || r.To != nil) {
		rng := bson.M{}
		if r.From != nil {
			rng["$gte"] = *r.From
		}
		if r.To != nil {
			rng["$lte"] = *r.To
		}
		f[r.Field] = rng
	}
	return f
}

// FindOptions returns sort and paging options. Ties are broken by _id so
// pages are stable.
func (q Query) FindOptions() *options.FindOptions {
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = DefaultSortField
	}
	dir := -1
	if q.Ascending {
		dir = 1
	}

	opts := options.Find().SetSort(bson.D{{Key: sortBy, Value: dir}, {Key: "_id", Value: dir}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}

var _ Collection[models.Project] = (*MongoCollection[models.Project])(nil)
