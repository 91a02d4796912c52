package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SaveCatalogImage stores (or replaces) the photo of a catalog item.
func SaveCatalogImage(ctx context.Context, db *sql.DB, itemID uuid.UUID, data []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO catalog_images (item_id, data, mime) VALUES (?, ?, ?)
		 ON CONFLICT (item_id) DO UPDATE SET data = excluded.data, mime = excluded.mime`,
		itemID, data, mime,
	)
	if err != nil {
		return fmt.Errorf("saving catalog image: %w", err)
	}
	return nil
}

// GetCatalogImage returns a catalog item's photo and MIME type.
func GetCatalogImage(ctx context.Context, db *sql.DB, itemID uuid.UUID) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM catalog_images WHERE item_id = ?`, itemID,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting catalog image: %w", err)
	}
	return data, mime, nil
}
