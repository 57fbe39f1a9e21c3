package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roomhub-commerce-api/internal/model"
)

// UserRepository owns the slice of the users table the commerce core needs.
// The coins column is only mutated through AddCoins/SpendCoins, always inside
// the same transaction as a ledger append.
type UserRepository struct {
	s *Store
}

// Get retrieves a user by id.
func (r *UserRepository) Get(ctx context.Context, q Querier, id int64) (*model.User, error) {
	var u model.User
	err := q.QueryRowContext(ctx, r.s.q(`
		SELECT id, name, coins, subscription_level, created_at FROM users WHERE id = ?`), id).
		Scan(&u.ID, &u.Name, &u.Coins, &u.SubscriptionLevel, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Create inserts a user and fills in its id.
func (r *UserRepository) Create(ctx context.Context, q Querier, u *model.User) error {
	if u.SubscriptionLevel == "" {
		u.SubscriptionLevel = model.LevelBronze
	}
	id, err := r.s.insertID(ctx, q, `
		INSERT INTO users (name, coins, subscription_level) VALUES (?, ?, ?)`,
		u.Name, u.Coins, u.SubscriptionLevel)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

// AddCoins credits the cached coin counter.
func (r *UserRepository) AddCoins(ctx context.Context, q Querier, id, amount int64) error {
	res, err := q.ExecContext(ctx, r.s.q(`
		UPDATE users SET coins = coins + ? WHERE id = ?`), amount, id)
	if err != nil {
		return fmt.Errorf("add coins: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrNotFound
	}
	return nil
}

// SpendCoins atomically debits the cached coin counter, refusing to go
// negative. Returns false when the balance was short.
func (r *UserRepository) SpendCoins(ctx context.Context, q Querier, id, amount int64) (bool, error) {
	res, err := q.ExecContext(ctx, r.s.q(`
		UPDATE users SET coins = coins - ? WHERE id = ? AND coins >= ?`), amount, id, amount)
	if err != nil {
		return false, fmt.Errorf("spend coins: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
