package services

import (
	"context"
	"strings"
	"time"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/sanitize"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventService struct {
	Events store.Collection[models.Event]
}

type EventFilter struct {
	From, To  *time.Time
	Tag       string
	Search    string
	Published *bool
}

// ListPublic returns published events, newest date first.
func (s *EventService) ListPublic(ctx context.Context, f EventFilter, p Page) (*List[models.Event], error) {
	return s.list(ctx, true, f, p)
}

// ListAll is the admin listing, including drafts.
func (s *EventService) ListAll(ctx context.Context, f EventFilter, p Page) (*List[models.Event], error) {
	return s.list(ctx, false, f, p)
}

func (s *EventService) list(ctx context.Context, public bool, f EventFilter, p Page) (*List[models.Event], error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, apperr.New(apperr.Validation, "to must not be before from")
	}
	where := visibility(public, f.Published)
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		where["tags"] = tag
	}
	q := store.Query{
		Where:        where,
		Search:       f.Search,
		SearchFields: []string{"title", "description"},
		Range:        dateRange("date", f.From, f.To),
		SortBy:       "date",
	}
	return list(ctx, s.Events, q, p)
}

// Get hides unpublished events from everyone but admins.
func (s *EventService) Get(ctx context.Context, id primitive.ObjectID, admin bool) (*models.Event, error) {
	e, err := get(ctx, s.Events, id, "event")
	if err != nil {
		return nil, err
	}
	if !e.Published && !admin {
		return nil, apperr.NotFoundf("event not found")
	}
	return e, nil
}

func (s *EventService) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	cleanEvent(e)
	if err := validation.Struct(e); err != nil {
		return nil, err
	}
	t := now()
	e.ID = primitive.NewObjectID()
	e.CreatedAt, e.UpdatedAt = t, t
	if err := s.Events.Insert(ctx, e); err != nil {
		return nil, translate(err, "event")
	}
	return e, nil
}

func (s *EventService) Update(ctx context.Context, id primitive.ObjectID, body []byte) (*models.Event, error) {
	return patch(ctx, s.Events, id, "event", body,
		func(old *models.Event) store.Match { return store.Match{"updatedAt": old.UpdatedAt} },
		func(old, next *models.Event) error {
			next.ID, next.CreatedAt, next.UpdatedAt = old.ID, old.CreatedAt, now()
			cleanEvent(next)
			return validation.Struct(next)
		})
}

func (s *EventService) TogglePublished(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return togglePublished(ctx, s.Events, id, "event", func(e *models.Event) bool { return e.Published })
}

func (s *EventService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return remove(ctx, s.Events, id, "event")
}

func cleanEvent(e *models.Event) {
	e.Title = sanitize.Text(e.Title)
	e.Description = sanitize.HTML(e.Description)
	e.Tags = sanitize.Tags(e.Tags)
	e.Date = e.Date.UTC().Truncate(time.Millisecond)
}
