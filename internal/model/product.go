package model

import "time"

// ProductStatus controls whether a product can be purchased.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// ProductVisibility controls who can see a product listing.
type ProductVisibility string

const (
	VisibilityPrivate ProductVisibility = "private"
	VisibilityPublic  ProductVisibility = "public"
)

// Product is a marketplace listing inside a room.
//
// Stock counts units currently available to reserve: it is decremented the
// moment any reservation happens (cart add or direct order) and incremented
// only on release, rejection or cancellation. It must never go negative.
type Product struct {
	ID         int64             `json:"id"`
	RoomID     int64             `json:"room_id"`
	OwnerID    int64             `json:"owner_id"`
	Name       string            `json:"name"`
	Price      int64             `json:"price"` // smallest currency unit
	Stock      int               `json:"stock"`
	Status     ProductStatus     `json:"status"`
	Visibility ProductVisibility `json:"visibility"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Purchasable reports whether the product accepts new reservations.
func (p *Product) Purchasable() bool {
	return p.Status == ProductActive
}
