package catalog

import (
	"context"

	"storefront/internal/domain"
)

type productRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

// Service serves the read-only product and category surface.
type Service struct {
	products   productRepo
	categories categoryRepo
}

func New(products productRepo, categories categoryRepo) *Service {
	return &Service{products: products, categories: categories}
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// ProductsByCategory resolves a category slug and lists its products.
func (s *Service) ProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error) {
	cat, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.products.ListByCategory(ctx, cat.ID)
}

func (s *Service) Product(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}
