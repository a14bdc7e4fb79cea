package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

var (
	// ErrQuantityInvalid is returned for zero or negative quantities.
	ErrQuantityInvalid = errors.New("quantity must be positive")
	// ErrProductUnknown is returned when the referenced product does not exist.
	ErrProductUnknown = errors.New("product not found")
)

type cartRepo interface {
	CreateActive(ctx context.Context, userID int64) (*domain.Cart, error)
	GetByID(ctx context.Context, id int64) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID int64, product domain.Product, quantity int) error
	UpdateLineQuantity(ctx context.Context, cartID, lineID int64, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID int64) error
	ClearLines(ctx context.Context, cartID int64) error
}

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// Service maintains each user's single active cart.
type Service struct {
	repo     cartRepo
	products productRepo
}

func New(repo cartRepo, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// GetOrCreateActive returns the user's active cart, creating an empty
// one when none exists yet.
func (s *Service) GetOrCreateActive(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.repo.CreateActive(ctx, userID)
}

// Add puts quantity units of a product into the user's active cart.
func (s *Service) Add(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrQuantityInvalid
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProductUnknown
		}
		return nil, err
	}
	cart, err := s.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddLine(ctx, cart.ID, *product, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// UpdateLine sets the quantity of one line in the user's active cart.
func (s *Service) UpdateLine(ctx context.Context, userID, lineID int64, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrQuantityInvalid
	}
	cart, err := s.ownedCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLineQuantity(ctx, cart.ID, lineID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// RemoveLine deletes one line from the user's active cart.
func (s *Service) RemoveLine(ctx context.Context, userID, lineID int64) (*domain.Cart, error) {
	cart, err := s.ownedCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteLine(ctx, cart.ID, lineID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

// Clear empties the user's active cart.
func (s *Service) Clear(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := s.ownedCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ClearLines(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cart.ID)
}

func (s *Service) ownedCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}
