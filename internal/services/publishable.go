package services

import (
	"context"
	"time"

	"github.com/arzan03/ClubHub/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// togglePublished flips the published flag, conditional on the value read
// so two concurrent toggles cannot cancel out silently.
func togglePublished[T any](ctx context.Context, col store.Collection[T], id primitive.ObjectID, entity string,
	published func(*T) bool) (*T, error) {
	doc, err := get(ctx, col, id, entity)
	if err != nil {
		return nil, err
	}
	cur := published(doc)
	updated, err := col.Update(ctx, id, store.Match{"published": cur},
		store.Fields{"published": !cur, "updatedAt": now()})
	if err != nil {
		return nil, translate(err, entity)
	}
	return updated, nil
}

// visibility restricts public queries to published documents; admins can
// filter by the flag or see everything.
func visibility(public bool, published *bool) store.Match {
	m := store.Match{}
	switch {
	case public:
		m["published"] = true
	case published != nil:
		m["published"] = *published
	}
	return m
}

func dateRange(field string, from, to *time.Time) *store.TimeRange {
	if from == nil && to == nil {
		return nil
	}
	return &store.TimeRange{Field: field, From: from, To: to}
}
