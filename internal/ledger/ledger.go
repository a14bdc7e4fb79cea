// Package ledger mirrors the server-side cart on the client. Totals
// are always derived locally from the line items so the money shown
// never disagrees with the lines shown.
package ledger

import (
	"context"
	"log"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/remote"
)

// Line is one normalised cart entry.
type Line struct {
	ID             int64
	ProductID      int64
	ProductName    string
	ImagePath      string
	Quantity       int
	UnitPriceCents int64
	SubtotalCents  int64
}

// Cart is a snapshot of the mirrored cart with derived money fields.
type Cart struct {
	Lines         []Line
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
	TaxRate       float64
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

type api interface {
	GetCart(ctx context.Context) (remote.Cart, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (remote.Cart, error)
	UpdateCartLine(ctx context.Context, lineID int64, quantity int) (remote.Cart, error)
	RemoveCartLine(ctx context.Context, lineID int64) (remote.Cart, error)
	ClearCart(ctx context.Context) (remote.Cart, error)
	PlaceOrder(ctx context.Context) (remote.Order, error)
}

// Listener receives a snapshot after every cart change.
type Listener func(Cart)

// Ledger holds the mirrored cart. Every mutation is confirmed by the
// server before the mirror changes; on failure the last known good
// snapshot stays in place.
type Ledger struct {
	api     api
	taxRate float64
	logger  *log.Logger

	mu        sync.Mutex
	cart      Cart
	listeners []Listener
}

// New builds an empty ledger. taxRate is a fraction, e.g. 0.10.
func New(api api, taxRate float64, logger *log.Logger) *Ledger {
	return &Ledger{
		api:     api,
		taxRate: taxRate,
		logger:  logger,
		cart:    Cart{TaxRate: taxRate},
	}
}

// Current returns a snapshot of the mirrored cart.
func (l *Ledger) Current() Cart {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Subscribe registers a listener for cart changes. Listeners run
// exactly once per accepted mutation, outside the ledger's lock.
func (l *Ledger) Subscribe(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Fetch replaces the mirror with the server's cart. On failure the
// previous snapshot is kept and the error returned.
func (l *Ledger) Fetch(ctx context.Context) (Cart, error) {
	rc, err := l.api.GetCart(ctx)
	if err != nil {
		return Cart{}, err
	}
	return l.replace(rc), nil
}

// Add puts quantity units of a product in the cart. The server merges
// repeated adds of the same product into one line, so the whole mirror
// is replaced with its response.
func (l *Ledger) Add(ctx context.Context, productID int64, quantity int) (Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	rc, err := l.api.AddToCart(ctx, productID, quantity)
	if err != nil {
		return Cart{}, err
	}
	return l.replace(rc), nil
}

// ChangeQuantity sets a line's quantity. Quantities below 1 are a
// local no-op: no request is sent and the mirror is untouched.
func (l *Ledger) ChangeQuantity(ctx context.Context, lineID int64, quantity int) (Cart, error) {
	if quantity < 1 {
		return l.Current(), nil
	}
	rc, err := l.api.UpdateCartLine(ctx, lineID, quantity)
	if err != nil {
		return Cart{}, err
	}
	return l.replace(rc), nil
}

// RemoveLine deletes a line. Removing the last line leaves an empty
// cart with zero totals.
func (l *Ledger) RemoveLine(ctx context.Context, lineID int64) (Cart, error) {
	rc, err := l.api.RemoveCartLine(ctx, lineID)
	if err != nil {
		return Cart{}, err
	}
	return l.replace(rc), nil
}

// Clear empties the cart.
func (l *Ledger) Clear(ctx context.Context) (Cart, error) {
	rc, err := l.api.ClearCart(ctx)
	if err != nil {
		return Cart{}, err
	}
	return l.replace(rc), nil
}

// Checkout places an order from the cart and resets the mirror on
// success.
func (l *Ledger) Checkout(ctx context.Context) (remote.Order, error) {
	order, err := l.api.PlaceOrder(ctx)
	if err != nil {
		return remote.Order{}, err
	}
	l.replace(remote.Cart{})
	return order, nil
}

// Reset drops the mirror without a server call, for use when the
// session ends.
func (l *Ledger) Reset() {
	l.replace(remote.Cart{})
}

func (l *Ledger) replace(rc remote.Cart) Cart {
	next := l.normalise(rc)

	l.mu.Lock()
	l.cart = next
	listeners := make([]Listener, len(l.listeners))
	copy(listeners, l.listeners)
	snap := l.snapshotLocked()
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

// normalise maps the raw server cart into lines with defaults applied:
// a missing quantity counts as 1, an unparseable or missing price as
// zero. Totals are recomputed from the normalised lines.
func (l *Ledger) normalise(rc remote.Cart) Cart {
	cart := Cart{TaxRate: l.taxRate}
	for _, it := range rc.Items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		cents, err := domain.ParsePrice(it.Product.Price)
		if err != nil {
			l.logger.Printf("cart line %d: bad price %q: %v", it.ID, it.Product.Price, err)
			cents = 0
		}
		name := it.Product.Name
		if name == "" {
			name = "Unknown Product"
		}
		line := Line{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductName:    name,
			ImagePath:      it.Product.MainImagePath,
			Quantity:       qty,
			UnitPriceCents: cents,
			SubtotalCents:  cents * int64(qty),
		}
		cart.Lines = append(cart.Lines, line)
		cart.SubtotalCents += line.SubtotalCents
	}
	cart.TaxCents = domain.TaxCents(cart.SubtotalCents, l.taxRate)
	cart.TotalCents = cart.SubtotalCents + cart.TaxCents
	return cart
}

func (l *Ledger) snapshotLocked() Cart {
	snap := l.cart
	snap.Lines = make([]Line, len(l.cart.Lines))
	copy(snap.Lines, l.cart.Lines)
	return snap
}
