package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogKind separates the two catalogs that share storage.
type CatalogKind string

// Catalog kinds.
const (
	KindProduct CatalogKind = "product"
	KindMenu    CatalogKind = "menu"
)

// CatalogItem is a purchasable product or menu entry.
type CatalogItem struct {
	ID          uuid.UUID       `json:"id"`
	Kind        CatalogKind     `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CatalogFields are the five user-editable fields of a catalog item.
type CatalogFields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Image       string
}

func init() {
	// Prices travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
