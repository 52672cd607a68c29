package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/queue"
	"github.com/arzan03/ClubHub/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// now is truncated to the store's time precision so values returned from a
// write compare equal to the stored ones.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// translate maps store errors onto the application error taxonomy.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFoundf("%s not found", entity)
	case errors.Is(err, store.ErrConflict):
		return apperr.Newf(apperr.Conflict, "%s was modified concurrently, reload and retry", entity)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Newf(apperr.Conflict, "%s already exists", entity)
	case apperr.KindOf(err) != apperr.Internal:
		return err
	default:
		return apperr.Wrap(apperr.Internal, "", err)
	}
}

// ParseID converts a path parameter into a document id.
func ParseID(s, entity string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.Newf(apperr.Validation, "invalid %s id", entity)
	}
	return id, nil
}

// Page is a validated page request.
type Page struct {
	Page  int64
	Limit int64
}

// NewPage applies defaults and bounds: page starts at 1, limit is 1..MaxLimit.
func NewPage(page, limit int64) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

type Pagination struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// List is one page of documents.
type List[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func list[T any](ctx context.Context, col store.Collection[T], q store.Query, p Page) (*List[T], error) {
	if p.Limit == 0 {
		p = NewPage(p.Page, p.Limit)
	}
	total, err := col.Count(ctx, q)
	if err != nil {
		return nil, translate(err, "document")
	}

	q.Skip = (p.Page - 1) * p.Limit
	q.Limit = p.Limit
	docs, err := col.Find(ctx, q)
	if err != nil {
		return nil, translate(err, "document")
	}

	pages := int64(math.Ceil(float64(total) / float64(p.Limit)))
	return &List[T]{
		Data: docs,
		Pagination: Pagination{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: pages,
			HasNext:    p.Page < pages,
			HasPrev:    p.Page > 1,
		},
	}, nil
}

func get[T any](ctx context.Context, col store.Collection[T], id primitive.ObjectID, entity string) (*T, error) {
	doc, err := col.Get(ctx, id)
	if err != nil {
		return nil, translate(err, entity)
	}
	return doc, nil
}

func remove[T any](ctx context.Context, col store.Collection[T], id primitive.ObjectID, entity string) error {
	_, err := col.Delete(ctx, id, nil)
	return translate(err, entity)
}

// patch applies a partial JSON body onto a copy of the stored document.
// prepare restores immutable fields and validates. The write only succeeds
// while the stored document still satisfies match(old), which callers base
// on updatedAt.
func patch[T any](ctx context.Context, col store.Collection[T], id primitive.ObjectID, entity string,
	body []byte, match func(old *T) store.Match, prepare func(old, next *T) error) (*T, error) {
	old, err := get(ctx, col, id, entity)
	if err != nil {
		return nil, err
	}
	next, err := clone(old)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "", err)
	}
	if err := json.Unmarshal(body, next); err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	if err := prepare(old, next); err != nil {
		return nil, err
	}

	if err := col.Replace(ctx, id, match(old), next); err != nil {
		return nil, translate(err, entity)
	}
	return next, nil
}

// clone deep copies a document through its BSON form.
func clone[T any](v *T) (*T, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// publish emits a domain event. Broker failures never fail the request.
func publish(ctx context.Context, pub queue.Publisher, log *zap.Logger, key string, event any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, key, event); err != nil && log != nil {
		log.Warn("publish event failed", zap.String("key", key), zap.Error(err))
	}
}
