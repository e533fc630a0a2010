package orders

import "time"

type Order struct {
	ID         string      `json:"id"`
	OwnerID    string      `json:"owner"`
	Status     Status      `json:"status"`
	Items      []OrderItem `json:"items"`
	TotalCents int         `json:"total"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"-"`
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
	// Unit price captured when the order was accepted; later product price
	// changes never touch it.
	PriceCents int `json:"price"`
}

type ItemInput struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Actor is the authenticated identity performing an order operation.
type Actor struct {
	ID      string
	IsAdmin bool
}
