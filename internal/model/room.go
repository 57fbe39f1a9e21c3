package model

import "time"

// Room is a community space with an in-room marketplace.
type Room struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserRoomUsage counts rooms created by a user in one calendar month. One row
// per (user, year, month); the counter only increments.
type UserRoomUsage struct {
	ID                  int64 `json:"id"`
	UserID              int64 `json:"user_id"`
	UsageYear           int   `json:"usage_year"`
	UsageMonth          int   `json:"usage_month"`
	MonthlyRoomsCreated int   `json:"monthly_rooms_created"`
}
