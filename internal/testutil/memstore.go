// Package testutil holds in-memory stand-ins for the external services so
// service and handler tests run without Docker.
package testutil

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection is an in-memory store.Collection. Documents are kept as BSON
// maps so encoding behaves like the real driver (tags, omitempty,
// millisecond times).
type Collection[T any] struct {
	mu     sync.Mutex
	docs   map[primitive.ObjectID]bson.M
	unique []string

	// InsertErr, when set, is returned by the next Insert.
	InsertErr error
}

func NewCollection[T any](unique ...string) *Collection[T] {
	return &Collection[T]{docs: map[primitive.ObjectID]bson.M{}, unique: unique}
}

// NewCollections returns a fresh in-memory store for every entity.
func NewCollections() store.Collections {
	return store.Collections{
		Users:       NewCollection[models.User]("email"),
		Products:    NewCollection[models.Product](),
		Events:      NewCollection[models.Event](),
		Skillings:   NewCollection[models.Skilling](),
		Submissions: NewCollection[models.Submission](),
		Projects:    NewCollection[models.Project](),
		Orders:      NewCollection[models.Order](),
	}
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *Collection[T]) Insert(_ context.Context, doc *T) error {
	m, err := toMap(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.InsertErr; err != nil {
		c.InsertErr = nil
		return err
	}

	id, ok := m["_id"].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
		m["_id"] = id
	}
	if _, exists := c.docs[id]; exists {
		return store.ErrDuplicate
	}
	if c.violatesUnique(id, m) {
		return store.ErrDuplicate
	}
	c.docs[id] = m
	return nil
}

func (c *Collection[T]) Get(_ context.Context, id primitive.ObjectID) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return fromMap[T](m)
}

func (c *Collection[T]) Find(_ context.Context, q store.Query) ([]T, error) {
	c.mu.Lock()
	matched := c.filter(q)
	c.mu.Unlock()

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = store.DefaultSortField
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, _ := lookup(matched[i], sortBy)
		b, _ := lookup(matched[j], sortBy)
		cmp := compare(a, b)
		if cmp == 0 {
			cmp = compare(matched[i]["_id"], matched[j]["_id"])
		}
		if q.Ascending {
			return cmp < 0
		}
		return cmp > 0
	})

	if q.Skip > 0 {
		if q.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[q.Skip:]
		}
	}
	if q.Limit > 0 && q.Limit < int64(len(matched)) {
		matched = matched[:q.Limit]
	}

	out := make([]T, 0, len(matched))
	for _, m := range matched {
		doc, err := fromMap[T](m)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (c *Collection[T]) Count(_ context.Context, q store.Query) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.filter(q))), nil
}

func (c *Collection[T]) Update(_ context.Context, id primitive.ObjectID, match store.Match, set store.Fields) (*T, error) {
	values, err := toMap(bson.M(set))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.matching(id, match)
	if err != nil {
		return nil, err
	}

	next := cloneMap(m)
	for k, v := range values {
		next[k] = v
	}
	if c.violatesUnique(id, next) {
		return nil, store.ErrDuplicate
	}
	c.docs[id] = next
	return fromMap[T](next)
}

func (c *Collection[T]) Increment(_ context.Context, id primitive.ObjectID, match store.Match, field string, delta int) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.matching(id, match)
	if err != nil {
		return nil, err
	}

	next := cloneMap(m)
	switch v := next[field].(type) {
	case int32:
		next[field] = v + int32(delta)
	case int64:
		next[field] = v + int64(delta)
	case float64:
		next[field] = v + float64(delta)
	default:
		next[field] = int64(delta)
	}
	c.docs[id] = next
	return fromMap[T](next)
}

func (c *Collection[T]) Replace(_ context.Context, id primitive.ObjectID, match store.Match, doc *T) error {
	m, err := toMap(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.matching(id, match); err != nil {
		return err
	}
	m["_id"] = id
	if c.violatesUnique(id, m) {
		return store.ErrDuplicate
	}
	c.docs[id] = m
	return nil
}

func (c *Collection[T]) Delete(_ context.Context, id primitive.ObjectID, match store.Match) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.matching(id, match)
	if err != nil {
		return nil, err
	}
	delete(c.docs, id)
	return fromMap[T](m)
}

// matching must be called with mu held.
func (c *Collection[T]) matching(id primitive.ObjectID, match store.Match) (bson.M, error) {
	m, ok := c.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !matchesAll(m, match) {
		return nil, store.ErrConflict
	}
	return m, nil
}

func (c *Collection[T]) violatesUnique(id primitive.ObjectID, m bson.M) bool {
	for _, field := range c.unique {
		v, ok := m[field]
		if !ok {
			continue
		}
		for otherID, other := range c.docs {
			if otherID != id && equal(other[field], v) {
				return true
			}
		}
	}
	return false
}

func (c *Collection[T]) filter(q store.Query) []bson.M {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	var out []bson.M
	for _, m := range c.docs {
		if !matchesAll(m, q.Where) {
			continue
		}
		if search != "" && len(q.SearchFields) > 0 && !containsAny(m, q.SearchFields, search) {
			continue
		}
		if !inRange(m, q.Range) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesAll(m bson.M, match store.Match) bool {
	for field, want := range match {
		got, present := lookup(m, field)
		switch w := want.(type) {
		case store.AtLeast:
			n, ok := number(got)
			if !present || !ok || n < float64(w.N) {
				return false
			}
		default:
			if want == nil || reflect.ValueOf(want).Kind() == reflect.Ptr && reflect.ValueOf(want).IsNil() {
				if present && got != nil {
					return false
				}
				continue
			}
			if !present {
				return false
			}
			if arr, ok := got.(bson.A); ok {
				if !containsValue(arr, want) {
					return false
				}
				continue
			}
			if !equal(got, want) {
				return false
			}
		}
	}
	return true
}

func containsValue(arr bson.A, want any) bool {
	for _, v := range arr {
		if equal(v, want) {
			return true
		}
	}
	return false
}

func containsAny(m bson.M, fields []string, needle string) bool {
	for _, f := range fields {
		if v, ok := lookup(m, f); ok {
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
	}
	return false
}

func inRange(m bson.M, r *store.TimeRange) bool {
	if r == nil || r.Field == "" || (r.From == nil && r.To == nil) {
		return true
	}
	v, ok := lookup(m, r.Field)
	if !ok {
		return false
	}
	t, ok := normalize(v).(time.Time)
	if !ok {
		return false
	}
	if r.From != nil && t.Before(r.From.UTC().Truncate(time.Millisecond)) {
		return false
	}
	if r.To != nil && t.After(r.To.UTC().Truncate(time.Millisecond)) {
		return false
	}
	return true
}

// lookup resolves a dotted path through nested documents.
func lookup(m bson.M, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		switch doc := cur.(type) {
		case bson.M:
			v, ok := doc[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := doc[part]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			found := false
			for _, e := range doc {
				if e.Key == part {
					cur, found = e.Value, true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

// normalize maps values to a canonical representation so a Go query value
// compares equal to its decoded BSON counterpart.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return x
	case *primitive.ObjectID:
		if x == nil {
			return nil
		}
		return *x
	case primitive.DateTime:
		return x.Time().UTC()
	case time.Time:
		return x.UTC().Truncate(time.Millisecond)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Truncate(time.Millisecond)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

func number(v any) (float64, bool) {
	n, ok := normalize(v).(float64)
	return n, ok
}

func equal(a, b any) bool {
	na, nb := normalize(a), normalize(b)
	if ta, ok := na.(time.Time); ok {
		tb, ok := nb.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(na, nb)
}

// compare orders missing values first, then numbers, strings, times, ids.
func compare(a, b any) int {
	na, nb := normalize(a), normalize(b)
	switch x := na.(type) {
	case nil:
		if nb == nil {
			return 0
		}
		return -1
	case float64:
		if y, ok := nb.(float64); ok {
			return cmpOrdered(x, y)
		}
	case string:
		if y, ok := nb.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := nb.(bool); ok {
			return cmpOrdered(boolInt(x), boolInt(y))
		}
	case time.Time:
		if y, ok := nb.(time.Time); ok {
			return x.Compare(y)
		}
	case primitive.ObjectID:
		if y, ok := nb.(primitive.ObjectID); ok {
			return strings.Compare(x.Hex(), y.Hex())
		}
	}
	if nb == nil {
		return 1
	}
	return 0
}

func cmpOrdered[N int | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toMap(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func cloneMap(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ store.Collection[models.Order] = (*Collection[models.Order])(nil)
