package model

import "time"

// CartItem is the per-(user, product) reservation record bridging intent to
// buy and a committed order.
//
// ReservedStock is the number of units already deducted from the product's
// stock on behalf of this line. Invariant: ReservedStock <= Quantity. The two
// normally match; they diverge only when a quantity top-up failed part way,
// and checkout reserves the shortfall before converting the line to an order.
type CartItem struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ProductID     int64     `json:"product_id"`
	Quantity      int       `json:"quantity"`
	ReservedStock int       `json:"reserved_stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Shortfall returns the units still missing from the line's reservation.
func (c *CartItem) Shortfall() int {
	return c.Quantity - c.ReservedStock
}
