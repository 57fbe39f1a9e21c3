package events

import (
	"encoding/json"
	"time"

	"roomhub-commerce-api/pkg/uid"
)

// Event types.
const (
	TypeStockChanged         = "StockChanged"
	TypeOrderPlaced          = "OrderPlaced"
	TypePaymentStatusChanged = "PaymentStatusChanged"
)

// Stock change reasons, one per mutation entry point.
const (
	ReasonCartReserved  = "cart_reserved"
	ReasonCartIncreased = "cart_increased"
	ReasonCartDecreased = "cart_decreased"
	ReasonCartReleased  = "cart_released"
	ReasonCartCleared   = "cart_cleared"
	ReasonPurchase      = "purchase"
	ReasonRejected      = "rejected"
	ReasonCancelled     = "cancelled"
)

// Envelope wraps every outbound event.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// StockChanged describes one mutation of a product's stock counter.
type StockChanged struct {
	ProductID      int64  `json:"product_id"`
	PreviousStock  int    `json:"previous_stock"`
	NewStock       int    `json:"new_stock"`
	Reason         string `json:"reason"`
	RelatedOrderID int64  `json:"related_order_id,omitempty"`
	ActorID        int64  `json:"actor_id"`
}

// Notification is a fire-and-forget event for the external broadcast
// service: order placements and payment status changes.
type Notification struct {
	Type        string `json:"type"`
	UserID      int64  `json:"user_id"` // recipient
	OrderID     int64  `json:"order_id,omitempty"`
	BatchID     string `json:"batch_id,omitempty"`
	OrderStatus string `json:"order_status,omitempty"`
	Message     string `json:"message,omitempty"`
}

// wrap builds an envelope around a payload. Marshal failures cannot happen
// for the fixed payload types above.
func wrap(eventType string, payload any) Envelope {
	raw, _ := json.Marshal(payload)
	return Envelope{
		EventID:      uid.New(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "roomhub-commerce-api",
		Payload:      raw,
	}
}
