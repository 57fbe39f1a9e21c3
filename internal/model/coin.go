package model

import "time"

// Ledger entry direction.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Ledger source types.
const (
	SourcePurchase = "purchase"
	SourceReward   = "reward"
	SourceSpend    = "spend"
	SourceSystem   = "system"
)

// Well-known ledger actions. Actions key idempotency checks: daily rewards are
// unique per (user, action, calendar day), the registration reward is unique
// per (user, action) for all time.
const (
	ActionDailyLogin   = "daily_login"
	ActionRegistration = "registration_reward"
	ActionRoomCreation = "room_creation"
)

// CoinTransaction is one append-only signed coin movement. Entries are never
// updated or deleted; a user's balance is the sum of in minus out, and the
// cached coins counter on the user row must equal that sum at all times.
type CoinTransaction struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Direction  string    `json:"direction"`
	Amount     int64     `json:"amount"` // always positive
	SourceType string    `json:"source_type"`
	Action     string    `json:"action"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Signed returns the entry's contribution to the balance.
func (t *CoinTransaction) Signed() int64 {
	if t.Direction == DirectionOut {
		return -t.Amount
	}
	return t.Amount
}
