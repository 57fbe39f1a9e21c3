package model

import "time"

// Subscription levels.
const (
	LevelBronze = "bronze"
	LevelSilver = "silver"
	LevelGold   = "gold"
)

// User carries the fields the commerce core needs; account management lives
// elsewhere. Coins is a cached counter over the coin ledger and is only ever
// mutated together with a ledger entry in the same transaction.
type User struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Coins             int64     `json:"coins"`
	SubscriptionLevel string    `json:"subscription_level"`
	CreatedAt         time.Time `json:"created_at"`
}

// Subscription is a time-bounded paid tier. An active row takes precedence
// over the cached SubscriptionLevel field on the user.
type Subscription struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Level    string    `json:"level"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ActiveAt reports whether the subscription covers the given instant.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return !t.Before(s.StartsAt) && t.Before(s.EndsAt)
}
