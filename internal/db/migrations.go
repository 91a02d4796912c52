package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: catalog listings sort by creation time and by category/name.
	`CREATE INDEX IF NOT EXISTS idx_catalog_items_created ON catalog_items(kind, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_items_category ON catalog_items(kind, category, name)`,
	// Migration 2: newest-first order listings.
	`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)`,
}

// Migrate ensures the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
