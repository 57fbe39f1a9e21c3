package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roomhub-commerce-api/internal/model"
)

// OrderRepository owns reads and writes of the orders table.
type OrderRepository struct {
	s *Store
}

const orderColumns = `id, product_id, buyer_id, seller_id, quantity, unit_price, total_price,
	status, batch_id, parent_order_id, placed_from, ship_name, ship_address, ship_phone,
	created_at, updated_at`

func scanOrderRow(scan func(dest ...any) error) (*model.Order, error) {
	var o model.Order
	var batch sql.NullString
	var parent sql.NullInt64
	err := scan(&o.ID, &o.ProductID, &o.BuyerID, &o.SellerID, &o.Quantity, &o.UnitPrice,
		&o.TotalPrice, &o.Status, &batch, &parent, &o.PlacedFrom,
		&o.ShipName, &o.ShipAddress, &o.ShipPhone, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if batch.Valid {
		o.BatchID = batch.String
	}
	if parent.Valid {
		o.ParentOrderID = &parent.Int64
	}
	return &o, nil
}

// Create inserts an order and fills in its id.
func (r *OrderRepository) Create(ctx context.Context, q Querier, o *model.Order) error {
	var batch any
	if o.BatchID != "" {
		batch = o.BatchID
	}
	var parent any
	if o.ParentOrderID != nil {
		parent = *o.ParentOrderID
	}

	id, err := r.s.insertID(ctx, q, `
		INSERT INTO orders (product_id, buyer_id, seller_id, quantity, unit_price, total_price,
			status, batch_id, parent_order_id, placed_from, ship_name, ship_address, ship_phone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ProductID, o.BuyerID, o.SellerID, o.Quantity, o.UnitPrice, o.TotalPrice,
		o.Status, batch, parent, o.PlacedFrom, o.ShipName, o.ShipAddress, o.ShipPhone)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = id
	return nil
}

// Get retrieves an order by id.
func (r *OrderRepository) Get(ctx context.Context, q Querier, id int64) (*model.Order, error) {
	row := q.QueryRowContext(ctx, r.s.q(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	return scanOrderRow(row.Scan)
}

// GetForUpdate retrieves an order holding a row lock for the enclosing
// transaction.
func (r *OrderRepository) GetForUpdate(ctx context.Context, q Querier, id int64) (*model.Order, error) {
	row := q.QueryRowContext(ctx, r.s.q(`SELECT `+orderColumns+` FROM orders WHERE id = ?`+r.s.forUpdate()), id)
	return scanOrderRow(row.Scan)
}

// ListBatch returns the main order and every child, main first. For an order
// outside any batch this is just the order itself.
func (r *OrderRepository) ListBatch(ctx context.Context, q Querier, mainID int64) ([]model.Order, error) {
	rows, err := q.QueryContext(ctx, r.s.q(`
		SELECT `+orderColumns+` FROM orders
		WHERE id = ? OR parent_order_id = ?
		ORDER BY (parent_order_id IS NOT NULL), id`), mainID, mainID)
	if err != nil {
		return nil, fmt.Errorf("list batch: %w", err)
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrderRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *OrderRepository) ListByBuyer(ctx context.Context, q Querier, buyerID int64) ([]model.Order, error) {
	rows, err := q.QueryContext(ctx, r.s.q(`
		SELECT `+orderColumns+` FROM orders WHERE buyer_id = ? ORDER BY id DESC`), buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrderRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateStatusBatch applies a status to the main order and every child in one
// statement, keeping the batch in lockstep.
func (r *OrderRepository) UpdateStatusBatch(ctx context.Context, q Querier, mainID int64, status model.OrderStatus) error {
	_, err := q.ExecContext(ctx, r.s.q(`
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? OR parent_order_id = ?`), status, mainID, mainID)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	return nil
}
