package httpserver

import (
	"context"
	"io"
	"log"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service/account"

	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubAccountSvc struct {
	user      *domain.User
	token     string
	loginErr  error
	regErr    error
	lookupErr error
	loggedOut []string
}

func (s *stubAccountSvc) Register(_ context.Context, _ account.RegisterInput) (*domain.User, error) {
	return s.user, s.regErr
}

func (s *stubAccountSvc) Login(_ context.Context, _, _ string) (*domain.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return s.user, s.token, nil
}

func (s *stubAccountSvc) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAccountSvc) LookupByToken(_ context.Context, _ string) (*domain.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.user, nil
}

func (s *stubAccountSvc) UpdateProfile(_ context.Context, _ int64, name, email string) (*domain.User, error) {
	u := *s.user
	u.Name = name
	u.Email = email
	return &u, nil
}

func (s *stubAccountSvc) ChangePassword(_ context.Context, _ int64, _, _, _ string) error {
	return nil
}

type stubCatalogSvc struct {
	products   []domain.Product
	categories []domain.Category
	err        error
}

func (s *stubCatalogSvc) Products(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogSvc) ProductsByCategory(_ context.Context, _ string) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogSvc) Product(_ context.Context, _ int64) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.products) == 0 {
		return nil, domain.ErrNotFound
	}
	return &s.products[0], nil
}

func (s *stubCatalogSvc) Categories(_ context.Context) ([]domain.Category, error) {
	return s.categories, s.err
}

type stubCartSvc struct {
	cart    *domain.Cart
	err     error
	lastOp  string
	lastQty int
}

func (s *stubCartSvc) GetOrCreateActive(_ context.Context, _ int64) (*domain.Cart, error) {
	s.lastOp = "get"
	return s.cart, s.err
}

func (s *stubCartSvc) Add(_ context.Context, _, _ int64, qty int) (*domain.Cart, error) {
	s.lastOp = "add"
	s.lastQty = qty
	return s.cart, s.err
}

func (s *stubCartSvc) UpdateLine(_ context.Context, _, _ int64, qty int) (*domain.Cart, error) {
	s.lastOp = "update"
	s.lastQty = qty
	return s.cart, s.err
}

func (s *stubCartSvc) RemoveLine(_ context.Context, _, _ int64) (*domain.Cart, error) {
	s.lastOp = "remove"
	return s.cart, s.err
}

func (s *stubCartSvc) Clear(_ context.Context, _ int64) (*domain.Cart, error) {
	s.lastOp = "clear"
	return s.cart, s.err
}

type stubOrderSvc struct {
	order *domain.Order
	err   error
}

func (s *stubOrderSvc) PlaceFromCart(_ context.Context, _ int64) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderSvc) Get(_ context.Context, _, _ int64) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderSvc) ListForUser(_ context.Context, _ int64) ([]domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.order == nil {
		return nil, nil
	}
	return []domain.Order{*s.order}, nil
}

func testRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.AccountSvc == nil {
		deps.AccountSvc = &stubAccountSvc{user: &domain.User{ID: 1, Name: "Ada", Email: "ada@example.com"}, token: "tok"}
	}
	if deps.CatalogSvc == nil {
		deps.CatalogSvc = &stubCatalogSvc{}
	}
	if deps.CartSvc == nil {
		deps.CartSvc = &stubCartSvc{cart: &domain.Cart{ID: 1}}
	}
	if deps.OrderSvc == nil {
		deps.OrderSvc = &stubOrderSvc{}
	}
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func TestBuildRouter_RequiresServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if _, err := buildRouter(logDiscard(), nil, Deps{}); err == nil {
		t.Fatalf("expected error for missing services")
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Bearer  abc123 ", "abc123"},
		{"Basic abc123", ""},
		{"abc123", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := bearerToken(tc.header); got != tc.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
