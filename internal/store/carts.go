package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/spicestory/spicestory/internal/cart"
)

// GetCart returns a user's cart items in insertion order.
func GetCart(ctx context.Context, db *sql.DB, userID uuid.UUID) ([]cart.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT product_id, name, price, quantity FROM cart_items WHERE user_id = ? ORDER BY position`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting cart: %w", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SaveCart replaces a user's cart with items.
func SaveCart(ctx context.Context, db *sql.DB, userID uuid.UUID, items []cart.Item) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}

	for i, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (user_id, position, product_id, name, price, quantity) VALUES (?, ?, ?, ?, ?, ?)`,
			userID, i, it.ID, it.Name, it.Price, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("saving cart item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cart: %w", err)
	}
	return nil
}

// ClearCart empties a user's cart.
func ClearCart(ctx context.Context, db *sql.DB, userID uuid.UUID) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
