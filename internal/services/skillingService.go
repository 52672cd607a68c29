package services

import (
	"context"
	"strings"

	"github.com/arzan03/ClubHub/internal/apperr"
	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/sanitize"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SkillingService struct {
	Skillings store.Collection[models.Skilling]
}

type SkillingFilter struct {
	Difficulty string
	Tag        string
	Search     string
	Published  *bool
}

func (s *SkillingService) ListPublic(ctx context.Context, f SkillingFilter, p Page) (*List[models.Skilling], error) {
	return s.list(ctx, true, f, p)
}

func (s *SkillingService) ListAll(ctx context.Context, f SkillingFilter, p Page) (*List[models.Skilling], error) {
	return s.list(ctx, false, f, p)
}

func (s *SkillingService) list(ctx context.Context, public bool, f SkillingFilter, p Page) (*List[models.Skilling], error) {
	where := visibility(public, f.Published)
	if d := strings.ToLower(strings.TrimSpace(f.Difficulty)); d != "" {
		if !models.Difficulty(d).Valid() {
			return nil, apperr.ValidationFields("invalid difficulty", map[string]string{
				"difficulty": "difficulty must be one of [beginner intermediate advanced]",
			})
		}
		where["difficulty"] = d
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		where["tags"] = tag
	}
	q := store.Query{Where: where, Search: f.Search, SearchFields: []string{"title", "description"}}
	return list(ctx, s.Skillings, q, p)
}

func (s *SkillingService) Get(ctx context.Context, id primitive.ObjectID, admin bool) (*models.Skilling, error) {
	sk, err := get(ctx, s.Skillings, id, "skilling")
	if err != nil {
		return nil, err
	}
	if !sk.Published && !admin {
		return nil, apperr.NotFoundf("skilling not found")
	}
	return sk, nil
}

func (s *SkillingService) Create(ctx context.Context, sk *models.Skilling) (*models.Skilling, error) {
	cleanSkilling(sk)
	if err := validation.Struct(sk); err != nil {
		return nil, err
	}
	t := now()
	sk.ID = primitive.NewObjectID()
	sk.CreatedAt, sk.UpdatedAt = t, t
	if err := s.Skillings.Insert(ctx, sk); err != nil {
		return nil, translate(err, "skilling")
	}
	return sk, nil
}

func (s *SkillingService) Update(ctx context.Context, id primitive.ObjectID, body []byte) (*models.Skilling, error) {
	return patch(ctx, s.Skillings, id, "skilling", body,
		func(old *models.Skilling) store.Match { return store.Match{"updatedAt": old.UpdatedAt} },
		func(old, next *models.Skilling) error {
			next.ID, next.CreatedAt, next.UpdatedAt = old.ID, old.CreatedAt, now()
			cleanSkilling(next)
			return validation.Struct(next)
		})
}

func (s *SkillingService) TogglePublished(ctx context.Context, id primitive.ObjectID) (*models.Skilling, error) {
	return togglePublished(ctx, s.Skillings, id, "skilling", func(sk *models.Skilling) bool { return sk.Published })
}

func (s *SkillingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return remove(ctx, s.Skillings, id, "skilling")
}

func cleanSkilling(sk *models.Skilling) {
	sk.Title = sanitize.Text(sk.Title)
	sk.Description = sanitize.HTML(sk.Description)
	sk.Tags = sanitize.Tags(sk.Tags)
	sk.Difficulty = models.Difficulty(strings.ToLower(strings.TrimSpace(string(sk.Difficulty))))
	if sk.Difficulty == "" {
		sk.Difficulty = models.DifficultyBeginner
	}
}
