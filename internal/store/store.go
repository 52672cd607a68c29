// Package store is the persistence layer: one generic collection per entity.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/arzan03/ClubHub/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrConflict means the document exists but did not satisfy the match
// condition of a conditional write.
var (
	ErrNotFound  = errors.New("document not found")
	ErrConflict  = errors.New("document was modified concurrently or is in an unexpected state")
	ErrDuplicate = errors.New("duplicate key")
)

// Fields is a set of field -> value assignments, keyed by bson name.
type Fields map[string]any

// Match restricts a query or a conditional write. Values are compared for
// equality, except AtLeast which is a lower bound. An array field matches
// when it contains the value.
type Match map[string]any

// AtLeast matches numeric fields >= N.
type AtLeast struct{ N int }

// TimeRange bounds one time field; nil ends are open.
type TimeRange struct {
	Field    string
	From, To *time.Time
}

type Query struct {
	Where Match
	// Search is a case-insensitive substring matched against SearchFields.
	Search       string
	SearchFields []string
	Range        *TimeRange
	SortBy       string
	Ascending    bool
	Skip, Limit  int64
}

// Collection is the set of operations every entity store supports.
type Collection[T any] interface {
	Insert(ctx context.Context, doc *T) error
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Find(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, q Query) (int64, error)
	// Update atomically applies set when the document matches and returns
	// the updated document.
	Update(ctx context.Context, id primitive.ObjectID, match Match, set Fields) (*T, error)
	// Increment atomically adds delta to field when the document matches.
	Increment(ctx context.Context, id primitive.ObjectID, match Match, field string, delta int) (*T, error)
	// Replace overwrites the whole document when it matches.
	Replace(ctx context.Context, id primitive.ObjectID, match Match, doc *T) error
	// Delete removes the document when it matches and returns it as it was
	// at removal.
	Delete(ctx context.Context, id primitive.ObjectID, match Match) (*T, error)
}

// Collections bundles the stores of every entity.
type Collections struct {
	Users       Collection[models.User]
	Products    Collection[models.Product]
	Events      Collection[models.Event]
	Skillings   Collection[models.Skilling]
	Submissions Collection[models.Submission]
	Projects    Collection[models.Project]
	Orders      Collection[models.Order]
}
