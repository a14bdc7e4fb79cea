package order

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"github.com/oklog/ulid/v2"
)

// ErrCartEmpty is returned when checkout is attempted on an empty cart.
var ErrCartEmpty = errors.New("cart is empty")

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

type cartRepo interface {
	GetActiveByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	ClearLines(ctx context.Context, cartID int64) error
}

// Service turns active carts into placed orders.
type Service struct {
	orders  orderRepo
	carts   cartRepo
	taxRate float64
}

func New(orders orderRepo, carts cartRepo, taxRate float64) *Service {
	return &Service{orders: orders, carts: carts, taxRate: taxRate}
}

// PlaceFromCart freezes the user's active cart into an order. Totals are
// derived from the cart lines at this moment and stored on the order;
// the cart is emptied on success.
func (s *Service) PlaceFromCart(ctx context.Context, userID int64) (*domain.Order, error) {
	cart, err := s.carts.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCartEmpty
		}
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrCartEmpty
	}

	var subtotal int64
	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lineTotal := l.UnitPriceCents * int64(l.Quantity)
		subtotal += lineTotal
		lines = append(lines, domain.OrderLine{
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     lineTotal,
		})
	}
	tax := domain.TaxCents(subtotal, s.taxRate)

	placed, err := s.orders.Create(ctx, domain.Order{
		Number:        ulid.Make().String(),
		UserID:        userID,
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
		Status:        "placed",
		Lines:         lines,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.ClearLines(ctx, cart.ID); err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *Service) Get(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}
