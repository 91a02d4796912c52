package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spicestory/spicestory/internal/model"
)

const catalogColumns = `id, kind, name, description, price, category, image, created_at, updated_at`

// CreateCatalogItem creates a new catalog item of the given kind.
func CreateCatalogItem(ctx context.Context, db *sql.DB, kind model.CatalogKind, f model.CatalogFields) (*model.CatalogItem, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`INSERT INTO catalog_items (id, kind, name, description, price, category, image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, kind, f.Name, f.Description, f.Price, f.Category, f.Image, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating catalog item: %w", err)
	}

	return GetCatalogItem(ctx, db, kind, id)
}

// GetCatalogItem returns a catalog item of the given kind by ID.
func GetCatalogItem(ctx context.Context, db *sql.DB, kind model.CatalogKind, id uuid.UUID) (*model.CatalogItem, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+catalogColumns+` FROM catalog_items WHERE id = ? AND kind = ?`, id, kind,
	)
	item, err := scanCatalogItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting catalog item: %w", err)
	}
	return item, nil
}

// FindCatalogItem returns a catalog item of any kind by ID. Orders may
// reference products and menu items alike.
func FindCatalogItem(ctx context.Context, db *sql.DB, id uuid.UUID) (*model.CatalogItem, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+catalogColumns+` FROM catalog_items WHERE id = ?`, id,
	)
	item, err := scanCatalogItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding catalog item: %w", err)
	}
	return item, nil
}

// GetCatalogItems returns the catalog items with the given IDs, keyed by ID.
// Missing IDs are absent from the result.
func GetCatalogItems(ctx context.Context, db *sql.DB, ids []uuid.UUID) (map[uuid.UUID]*model.CatalogItem, error) {
	items := make(map[uuid.UUID]*model.CatalogItem, len(ids))
	for _, id := range ids {
		item, err := FindCatalogItem(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items[id] = item
		}
	}
	return items, nil
}

// ListCatalogItems returns all items of a kind. Menu items are ordered by
// category then name, products newest first.
func ListCatalogItems(ctx context.Context, db *sql.DB, kind model.CatalogKind) ([]model.CatalogItem, error) {
	order := `created_at DESC, rowid DESC`
	if kind == model.KindMenu {
		order = `category, name`
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+catalogColumns+` FROM catalog_items WHERE kind = ? ORDER BY `+order, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("listing catalog items: %w", err)
	}
	defer rows.Close()

	var items []model.CatalogItem
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateCatalogItem replaces the five editable fields. Returns false if the
// item does not exist.
func UpdateCatalogItem(ctx context.Context, db *sql.DB, kind model.CatalogKind, id uuid.UUID, f model.CatalogFields) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE catalog_items
		 SET name = ?, description = ?, price = ?, category = ?, image = ?, updated_at = ?
		 WHERE id = ? AND kind = ?`,
		f.Name, f.Description, f.Price, f.Category, f.Image, time.Now().UTC(), id, kind,
	)
	if err != nil {
		return false, fmt.Errorf("updating catalog item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating catalog item: %w", err)
	}
	return n > 0, nil
}

// SetCatalogItemImage points an item's image at url.
func SetCatalogItemImage(ctx context.Context, db *sql.DB, id uuid.UUID, url string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE catalog_items SET image = ?, updated_at = ? WHERE id = ?`,
		url, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting catalog item image: %w", err)
	}
	return nil
}

// DeleteCatalogItem permanently deletes an item and its stored photo.
// Returns false if the item does not exist.
func DeleteCatalogItem(ctx context.Context, db *sql.DB, kind model.CatalogKind, id uuid.UUID) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM catalog_images WHERE item_id IN (SELECT id FROM catalog_items WHERE id = ? AND kind = ?)`,
		id, kind,
	); err != nil {
		return false, fmt.Errorf("deleting catalog image: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM catalog_items WHERE id = ? AND kind = ?`, id, kind,
	)
	if err != nil {
		return false, fmt.Errorf("deleting catalog item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting catalog item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing catalog delete: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCatalogItem(s scanner) (*model.CatalogItem, error) {
	item := &model.CatalogItem{}
	var kind string
	if err := s.Scan(&item.ID, &kind, &item.Name, &item.Description, &item.Price,
		&item.Category, &item.Image, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Kind = model.CatalogKind(kind)
	return item, nil
}
