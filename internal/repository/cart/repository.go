package cart

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	CreateActive(ctx context.Context, userID int64) (*domain.Cart, error)
	GetByID(ctx context.Context, id int64) (*domain.Cart, error)
	GetActiveByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID int64, product domain.Product, quantity int) error
	UpdateLineQuantity(ctx context.Context, cartID, lineID int64, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID int64) error
	ClearLines(ctx context.Context, cartID int64) error
	SetState(ctx context.Context, cartID int64, state string) error
}
