package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spicestory/spicestory/internal/model"
)

// OrderFilter narrows ListOrders. Zero values match everything.
type OrderFilter struct {
	Status model.OrderStatus
	UserID uuid.UUID
}

const orderColumns = `id, user_id, status, ship_street, ship_city, ship_state, ship_zip, ship_country, created_at, updated_at`

// CreateOrder persists an order and its line items in a single transaction.
// The ID and timestamps are assigned here.
func CreateOrder(ctx context.Context, db *sql.DB, o *model.Order) (*model.Order, error) {
	if len(o.Items) == 0 {
		return nil, fmt.Errorf("creating order: no items in order")
	}

	id := uuid.New()
	now := time.Now().UTC()
	addr := o.ShippingAddress

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, status, ship_street, ship_city, ship_state, ship_zip, ship_country, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, o.UserID, o.Status, addr.Street, addr.City, addr.State, addr.Zip, addr.Country, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	for i, li := range o.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, position, product_id, quantity, price) VALUES (?, ?, ?, ?, ?)`,
			id, i, li.ProductID, li.Quantity, li.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("creating order item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing order: %w", err)
	}

	return GetOrder(ctx, db, id)
}

// GetOrder returns an order with its line items by ID.
func GetOrder(ctx context.Context, db *sql.DB, id uuid.UUID) (*model.Order, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id,
	)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	o.Items, err = getOrderItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrders returns orders newest first, optionally filtered.
func ListOrders(ctx context.Context, db *sql.DB, filter OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.UserID != uuid.Nil {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}

	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	rows.Close()

	// Items are loaded after the order cursor is closed; test databases run
	// on a single connection.
	for i := range orders {
		orders[i].Items, err = getOrderItems(ctx, db, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateOrderStatus overwrites an order's status. Returns false if the order
// does not exist.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, id uuid.UUID, status model.OrderStatus) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("updating order status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating order status: %w", err)
	}
	return n > 0, nil
}

func getOrderItems(ctx context.Context, db *sql.DB, orderID uuid.UUID) ([]model.LineItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT product_id, quantity, price FROM order_items WHERE order_id = ? ORDER BY position`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting order items: %w", err)
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		var li model.LineItem
		if err := rows.Scan(&li.ProductID, &li.Quantity, &li.Price); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func scanOrder(s scanner) (*model.Order, error) {
	o := &model.Order{}
	var status string
	a := &o.ShippingAddress
	if err := s.Scan(&o.ID, &o.UserID, &status, &a.Street, &a.City, &a.State, &a.Zip, &a.Country,
		&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	return o, nil
}
