package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomhub-commerce-api/internal/model"
)

// RoomRepository owns reads and writes of the rooms table.
type RoomRepository struct {
	s *Store
}

// Create inserts a room and fills in its id.
func (r *RoomRepository) Create(ctx context.Context, q Querier, room *model.Room) error {
	if room.Visibility == "" {
		room.Visibility = "public"
	}
	id, err := r.s.insertID(ctx, q, `
		INSERT INTO rooms (owner_id, name, description, visibility) VALUES (?, ?, ?, ?)`,
		room.OwnerID, room.Name, room.Description, room.Visibility)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	room.ID = id
	return nil
}

// Get retrieves a room by id.
func (r *RoomRepository) Get(ctx context.Context, q Querier, id int64) (*model.Room, error) {
	var room model.Room
	err := q.QueryRowContext(ctx, r.s.q(`
		SELECT id, owner_id, name, description, visibility, created_at FROM rooms WHERE id = ?`), id).
		Scan(&room.ID, &room.OwnerID, &room.Name, &room.Description, &room.Visibility, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

// RoomUsageRepository owns the per-month room creation counters.
type RoomUsageRepository struct {
	s *Store
}

// Get returns the usage counter for (user, year, month), zero when the row
// does not exist yet.
func (r *RoomUsageRepository) Get(ctx context.Context, q Querier, userID int64, year, month int) (*model.UserRoomUsage, error) {
	u := model.UserRoomUsage{UserID: userID, UsageYear: year, UsageMonth: month}
	err := q.QueryRowContext(ctx, r.s.q(`
		SELECT id, monthly_rooms_created FROM user_room_usage
		WHERE user_id = ? AND usage_year = ? AND usage_month = ?`+r.s.forUpdate()),
		userID, year, month).Scan(&u.ID, &u.MonthlyRoomsCreated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &u, nil
		}
		return nil, fmt.Errorf("get room usage: %w", err)
	}
	return &u, nil
}

// Increment bumps the month's counter, creating the row lazily on the first
// room of the month.
func (r *RoomUsageRepository) Increment(ctx context.Context, q Querier, userID int64, year, month int) error {
	var query string
	switch r.s.driver {
	case DriverMySQL:
		query = `
			INSERT INTO user_room_usage (user_id, usage_year, usage_month, monthly_rooms_created)
			VALUES (?, ?, ?, 1)
			ON DUPLICATE KEY UPDATE monthly_rooms_created = monthly_rooms_created + 1`
	default: // sqlite, postgres
		query = `
			INSERT INTO user_room_usage (user_id, usage_year, usage_month, monthly_rooms_created)
			VALUES (?, ?, ?, 1)
			ON CONFLICT (user_id, usage_year, usage_month)
			DO UPDATE SET monthly_rooms_created = user_room_usage.monthly_rooms_created + 1`
	}

	_, err := q.ExecContext(ctx, r.s.q(query), userID, year, month)
	if err != nil {
		return fmt.Errorf("increment room usage: %w", err)
	}
	return nil
}

// SubscriptionRepository owns reads of the subscriptions table.
type SubscriptionRepository struct {
	s *Store
}

// ActiveLevel returns the level of the user's subscription covering now, if
// any. The latest-ending active row wins.
func (r *SubscriptionRepository) ActiveLevel(ctx context.Context, q Querier, userID int64, now time.Time) (string, bool, error) {
	var level string
	err := q.QueryRowContext(ctx, r.s.q(`
		SELECT level FROM subscriptions
		WHERE user_id = ? AND starts_at <= ? AND ends_at > ?
		ORDER BY ends_at DESC LIMIT 1`), userID, now, now).Scan(&level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get active subscription: %w", err)
	}
	return level, true, nil
}

// Create inserts a subscription row (used by seeding and tests; billing is an
// external collaborator).
func (r *SubscriptionRepository) Create(ctx context.Context, q Querier, sub *model.Subscription) error {
	id, err := r.s.insertID(ctx, q, `
		INSERT INTO subscriptions (user_id, level, starts_at, ends_at) VALUES (?, ?, ?, ?)`,
		sub.UserID, sub.Level, sub.StartsAt, sub.EndsAt)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	sub.ID = id
	return nil
}
