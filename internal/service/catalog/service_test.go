package catalog

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type stubProducts struct {
	byCategory map[int64][]domain.Product
	all        []domain.Product
}

func (s *stubProducts) List(_ context.Context) ([]domain.Product, error) {
	return s.all, nil
}

func (s *stubProducts) ListByCategory(_ context.Context, categoryID int64) ([]domain.Product, error) {
	return s.byCategory[categoryID], nil
}

func (s *stubProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	for _, p := range s.all {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubCategories struct {
	bySlug map[string]domain.Category
}

func (s *stubCategories) List(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(s.bySlug))
	for _, c := range s.bySlug {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCategories) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	c, ok := s.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func TestProductsByCategory(t *testing.T) {
	products := &stubProducts{
		byCategory: map[int64][]domain.Product{
			3: {{ID: 1, Name: "Mug"}, {ID: 2, Name: "Spoon"}},
		},
	}
	categories := &stubCategories{
		bySlug: map[string]domain.Category{"kitchen": {ID: 3, Slug: "kitchen"}},
	}
	svc := New(products, categories)

	got, err := svc.ProductsByCategory(context.Background(), "kitchen")
	if err != nil {
		t.Fatalf("ProductsByCategory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}

	if _, err := svc.ProductsByCategory(context.Background(), "no-such"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown slug error = %v, want ErrNotFound", err)
	}
}

func TestProductLookup(t *testing.T) {
	svc := New(&stubProducts{all: []domain.Product{{ID: 5, Name: "Mug"}}}, &stubCategories{})

	p, err := svc.Product(context.Background(), 5)
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if p.Name != "Mug" {
		t.Fatalf("unexpected product %+v", p)
	}

	if _, err := svc.Product(context.Background(), 6); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing product error = %v, want ErrNotFound", err)
	}
}
