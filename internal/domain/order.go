package domain

import "time"

// Order is a cart frozen at checkout. Totals are copied, not derived,
// so later price changes never touch a placed order.
type Order struct {
	ID            int64       `json:"id"`
	Number        string      `json:"number"`
	UserID        int64       `json:"-"`
	SubtotalCents int64       `json:"subtotalCents"`
	TaxCents      int64       `json:"taxCents"`
	TotalCents    int64       `json:"totalCents"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	Lines         []OrderLine `json:"items,omitempty"`
}

type OrderLine struct {
	ID             int64  `json:"id"`
	OrderID        int64  `json:"orderId"`
	ProductID      int64  `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}
