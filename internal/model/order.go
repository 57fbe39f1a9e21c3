package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderRejected  OrderStatus = "rejected"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// validNext maps each status to the set of statuses reachable from it.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderAccepted: true, OrderRejected: true, OrderCancelled: true},
	OrderAccepted:  {OrderDelivered: true, OrderCancelled: true},
	OrderRejected:  {},
	OrderDelivered: {},
	OrderCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Terminal reports whether the status permits no further transitions.
func (s OrderStatus) Terminal() bool {
	return len(validNext[s]) == 0
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// PlacedFrom records which flow created an order.
const (
	PlacedFromCart   = "cart"
	PlacedFromDirect = "direct"
)

// Order is a committed purchase of a single product.
//
// Orders created together from a multi-product checkout share a BatchID; the
// first order of the batch is the "main" order (ParentOrderID nil) and every
// sibling points at it. Status transitions are applied batch-wide, never to a
// single member. The order's quantity was deducted from product stock at
// creation time and returns to stock only through rejection or cancellation.
type Order struct {
	ID            int64       `json:"id"`
	ProductID     int64       `json:"product_id"`
	BuyerID       int64       `json:"buyer_id"`
	SellerID      int64       `json:"seller_id"`
	Quantity      int         `json:"quantity"`
	UnitPrice     int64       `json:"unit_price"`
	TotalPrice    int64       `json:"total_price"`
	Status        OrderStatus `json:"status"`
	BatchID       string      `json:"batch_id,omitempty"`
	ParentOrderID *int64      `json:"parent_order_id,omitempty"`
	PlacedFrom    string      `json:"placed_from"`
	ShipName      string      `json:"ship_name"`
	ShipAddress   string      `json:"ship_address"`
	ShipPhone     string      `json:"ship_phone"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsMain reports whether the order is the main order of its batch.
func (o *Order) IsMain() bool {
	return o.ParentOrderID == nil
}

// Shipping groups the delivery details supplied at checkout.
type Shipping struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}
