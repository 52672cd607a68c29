package services

import (
	"context"

	"github.com/arzan03/ClubHub/internal/models"
	"github.com/arzan03/ClubHub/internal/sanitize"
	"github.com/arzan03/ClubHub/internal/store"
	"github.com/arzan03/ClubHub/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductService struct {
	Products store.Collection[models.Product]
}

type ProductFilter struct {
	Search  string
	InStock bool
}

func (s *ProductService) List(ctx context.Context, f ProductFilter, p Page) (*List[models.Product], error) {
	q := store.Query{Search: f.Search, SearchFields: []string{"title", "description"}}
	if f.InStock {
		q.Where = store.Match{"stock": store.AtLeast{N: 1}}
	}
	return list(ctx, s.Products, q, p)
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return get(ctx, s.Products, id, "product")
}

func (s *ProductService) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	cleanProduct(p)
	if err := validation.Struct(p); err != nil {
		return nil, err
	}
	t := now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = t, t
	if err := s.Products.Insert(ctx, p); err != nil {
		return nil, translate(err, "product")
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, body []byte) (*models.Product, error) {
	return patch(ctx, s.Products, id, "product", body,
		func(old *models.Product) store.Match { return store.Match{"updatedAt": old.UpdatedAt} },
		func(old, next *models.Product) error {
			next.ID, next.CreatedAt, next.UpdatedAt = old.ID, old.CreatedAt, now()
			cleanProduct(next)
			return validation.Struct(next)
		})
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return remove(ctx, s.Products, id, "product")
}

func cleanProduct(p *models.Product) {
	p.Title = sanitize.Text(p.Title)
	p.Description = sanitize.HTML(p.Description)
}
