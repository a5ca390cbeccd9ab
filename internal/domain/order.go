package domain

import "time"

// OrderLine is one (product, quantity) pair snapshotted from a cart line at
// checkout time.
type OrderLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// Order is the durable snapshot of a cart taken at checkout. ID is assigned
// by the order store on persistence; an order is immutable afterwards.
type Order struct {
	ID        int64       `json:"id"`
	Lines     []OrderLine `json:"lines"`
	CreatedAt time.Time   `json:"created_at"`
}

// TotalAmount is the sum over all lines of quantity times unit price.
func (o *Order) TotalAmount() float64 {
	var total float64
	for _, line := range o.Lines {
		total += float64(line.Quantity) * line.Product.Price
	}
	return total
}
