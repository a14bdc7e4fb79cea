package domain

import "time"

type Cart struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"-"`
	State      string     `json:"state"`
	TotalCents int64      `json:"totalCents"`
	CreatedAt  time.Time  `json:"createdAt"`
	Lines      []CartLine `json:"items,omitempty"`
}

type CartLine struct {
	ID             int64     `json:"id"`
	CartID         int64     `json:"cartId"`
	ProductID      int64     `json:"productId"`
	ProductName    string    `json:"productName"`
	ImagePath      string    `json:"imagePath,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TotalCents     int64     `json:"totalCents"`
	CreatedAt      time.Time `json:"createdAt"`
}
