package repository

import (
	"context"
	"fmt"
	"time"

	"roomhub-commerce-api/internal/model"
)

// LedgerRepository owns the append-only coin_transactions table. Rows are
// inserted, never updated or deleted.
type LedgerRepository struct {
	s *Store
}

// Append inserts one ledger entry and fills in its id.
func (r *LedgerRepository) Append(ctx context.Context, q Querier, t *model.CoinTransaction) error {
	id, err := r.s.insertID(ctx, q, `
		INSERT INTO coin_transactions (user_id, direction, amount, source_type, action, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Direction, t.Amount, t.SourceType, t.Action, t.Notes)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	t.ID = id
	return nil
}

// Balance derives the user's balance from the ledger: sum(in) - sum(out).
func (r *LedgerRepository) Balance(ctx context.Context, q Querier, userID int64) (int64, error) {
	var balance int64
	err := q.QueryRowContext(ctx, r.s.q(`
		SELECT COALESCE(SUM(CASE WHEN direction = 'in' THEN amount ELSE -amount END), 0)
		FROM coin_transactions WHERE user_id = ?`), userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("derive balance: %w", err)
	}
	return balance, nil
}

// HasClaimedBetween reports whether a credit with the given action exists in
// [from, to). Day bounds are computed by the caller so the query stays
// driver-neutral. Bounds are bound as `YYYY-MM-DD HH:MM:SS` UTC strings,
// the format CURRENT_TIMESTAMP produces on every supported driver.
func (r *LedgerRepository) HasClaimedBetween(ctx context.Context, q Querier, userID int64, action string, from, to time.Time) (bool, error) {
	const layout = "2006-01-02 15:04:05"
	var n int
	err := q.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM coin_transactions
		WHERE user_id = ? AND action = ? AND direction = 'in'
		  AND created_at >= ? AND created_at < ?`),
		userID, action, from.UTC().Format(layout), to.UTC().Format(layout)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check claim: %w", err)
	}
	return n > 0, nil
}

// HasClaimedEver reports whether a credit with the given action exists at
// all. The registration reward uses this all-time check.
func (r *LedgerRepository) HasClaimedEver(ctx context.Context, q Querier, userID int64, action string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM coin_transactions
		WHERE user_id = ? AND action = ? AND direction = 'in'`), userID, action).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check claim: %w", err)
	}
	return n > 0, nil
}

// ListByUser returns a page of the user's ledger, newest first.
func (r *LedgerRepository) ListByUser(ctx context.Context, q Querier, userID int64, limit, offset int) ([]model.CoinTransaction, error) {
	rows, err := q.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, direction, amount, source_type, action, notes, created_at
		FROM coin_transactions WHERE user_id = ?
		ORDER BY id DESC LIMIT ? OFFSET ?`), userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var out []model.CoinTransaction
	for rows.Next() {
		var t model.CoinTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Direction, &t.Amount, &t.SourceType,
			&t.Action, &t.Notes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountByUser returns the number of ledger entries for the user.
func (r *LedgerRepository) CountByUser(ctx context.Context, q Querier, userID int64) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM coin_transactions WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ledger: %w", err)
	}
	return n, nil
}
