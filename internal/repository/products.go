package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roomhub-commerce-api/internal/model"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// insertID executes an INSERT and returns the generated id, papering over the
// LastInsertId/RETURNING split between drivers.
func (s *Store) insertID(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		err := q.QueryRowContext(ctx, s.q(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := q.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ProductRepository owns reads and writes of the products table. Stock columns
// are only ever touched through ReserveStock/ReleaseStock; every other write
// path must go through the stock engine that calls them.
type ProductRepository struct {
	s *Store
}

const productColumns = `id, room_id, owner_id, name, price, stock, status, visibility, created_at, updated_at`

func scanProduct(row *sql.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.RoomID, &p.OwnerID, &p.Name, &p.Price, &p.Stock,
		&p.Status, &p.Visibility, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// Create inserts a product and fills in its id.
func (r *ProductRepository) Create(ctx context.Context, q Querier, p *model.Product) error {
	id, err := r.s.insertID(ctx, q, `
		INSERT INTO products (room_id, owner_id, name, price, stock, status, visibility)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.RoomID, p.OwnerID, p.Name, p.Price, p.Stock, p.Status, p.Visibility)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	return nil
}

// Get retrieves a product by id.
func (r *ProductRepository) Get(ctx context.Context, q Querier, id int64) (*model.Product, error) {
	row := q.QueryRowContext(ctx, r.s.q(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	return scanProduct(row)
}

// GetForUpdate retrieves a product holding a row lock for the enclosing
// transaction (no-op clause on SQLite, whose single writer serializes).
func (r *ProductRepository) GetForUpdate(ctx context.Context, q Querier, id int64) (*model.Product, error) {
	row := q.QueryRowContext(ctx, r.s.q(`SELECT `+productColumns+` FROM products WHERE id = ?`+r.s.forUpdate()), id)
	return scanProduct(row)
}

// ReserveStock atomically deducts qty from the product's stock, guarding
// against the lost-update race: the condition and the decrement are one
// statement, and zero rows affected means the stock was short.
func (r *ProductRepository) ReserveStock(ctx context.Context, q Querier, id int64, qty int) (bool, error) {
	res, err := q.ExecContext(ctx, r.s.q(`
		UPDATE products SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?`), qty, id, qty)
	if err != nil {
		return false, fmt.Errorf("reserve stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseStock returns qty units to the product's stock. The caller
// guarantees the quantity was previously reserved.
func (r *ProductRepository) ReleaseStock(ctx context.Context, q Querier, id int64, qty int) error {
	res, err := q.ExecContext(ctx, r.s.q(`
		UPDATE products SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`), qty, id)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
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

// UpdateStatus sets the product's status.
func (r *ProductRepository) UpdateStatus(ctx context.Context, q Querier, id int64, status model.ProductStatus) error {
	_, err := q.ExecContext(ctx, r.s.q(`
		UPDATE products SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	return nil
}

// ListByRoom returns the products of a room.
func (r *ProductRepository) ListByRoom(ctx context.Context, q Querier, roomID int64) ([]model.Product, error) {
	rows, err := q.QueryContext(ctx, r.s.q(`
		SELECT `+productColumns+` FROM products WHERE room_id = ? ORDER BY id`), roomID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.RoomID, &p.OwnerID, &p.Name, &p.Price, &p.Stock,
			&p.Status, &p.Visibility, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
