package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roomhub-commerce-api/internal/model"
)

// CartRepository owns reads and writes of the cart_items table.
type CartRepository struct {
	s *Store
}

const cartColumns = `id, user_id, product_id, quantity, reserved_stock, created_at, updated_at`

func scanCartItem(row *sql.Row) (*model.CartItem, error) {
	var c model.CartItem
	err := row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.ReservedStock,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan cart item: %w", err)
	}
	return &c, nil
}

// Create inserts a cart line and fills in its id. The unique
// (user_id, product_id) index rejects a duplicate line.
func (r *CartRepository) Create(ctx context.Context, q Querier, c *model.CartItem) error {
	id, err := r.s.insertID(ctx, q, `
		INSERT INTO cart_items (user_id, product_id, quantity, reserved_stock)
		VALUES (?, ?, ?, ?)`,
		c.UserID, c.ProductID, c.Quantity, c.ReservedStock)
	if err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	c.ID = id
	return nil
}

// Get retrieves a cart line by id.
func (r *CartRepository) Get(ctx context.Context, q Querier, id int64) (*model.CartItem, error) {
	row := q.QueryRowContext(ctx, r.s.q(`SELECT `+cartColumns+` FROM cart_items WHERE id = ?`), id)
	return scanCartItem(row)
}

// GetByUserProduct retrieves the (user, product) line if it exists.
func (r *CartRepository) GetByUserProduct(ctx context.Context, q Querier, userID, productID int64) (*model.CartItem, error) {
	row := q.QueryRowContext(ctx, r.s.q(`
		SELECT `+cartColumns+` FROM cart_items WHERE user_id = ? AND product_id = ?`), userID, productID)
	return scanCartItem(row)
}

// ListByUser returns every line of the user's cart.
func (r *CartRepository) ListByUser(ctx context.Context, q Querier, userID int64) ([]model.CartItem, error) {
	rows, err := q.QueryContext(ctx, r.s.q(`
		SELECT `+cartColumns+` FROM cart_items WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var out []model.CartItem
	for rows.Next() {
		var c model.CartItem
		if err := rows.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.ReservedStock,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateQuantities persists new quantity and reserved_stock values.
func (r *CartRepository) UpdateQuantities(ctx context.Context, q Querier, id int64, quantity, reserved int) error {
	res, err := q.ExecContext(ctx, r.s.q(`
		UPDATE cart_items SET quantity = ?, reserved_stock = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`), quantity, reserved, id)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
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

// Delete removes a cart line.
func (r *CartRepository) Delete(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, r.s.q(`DELETE FROM cart_items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

// DeleteByUser removes every line of the user's cart.
func (r *CartRepository) DeleteByUser(ctx context.Context, q Querier, userID int64) error {
	_, err := q.ExecContext(ctx, r.s.q(`DELETE FROM cart_items WHERE user_id = ?`), userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
