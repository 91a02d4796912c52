package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicestory/spicestory/internal/cart"
	"github.com/spicestory/spicestory/internal/db"
)

func TestSaveAndGetCart(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := uuid.New()

	items := []cart.Item{
		{ID: uuid.New(), Name: "Vada Pav", Price: decimal.RequireFromString("5.50"), Quantity: 2},
		{ID: uuid.New(), Name: "Masala Chai", Price: decimal.RequireFromString("2.25"), Quantity: 1},
	}
	if err := SaveCart(ctx, database, user, items); err != nil {
		t.Fatalf("SaveCart: %v", err)
	}

	got, err := GetCart(ctx, database, user)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(got) != 2 || got[0].ID != items[0].ID || got[1].ID != items[1].ID {
		t.Fatalf("expected items in order, got %+v", got)
	}
	if !got[0].Price.Equal(items[0].Price) || got[0].Quantity != 2 {
		t.Errorf("unexpected first item: %+v", got[0])
	}

	// Save replaces.
	if err := SaveCart(ctx, database, user, items[1:]); err != nil {
		t.Fatalf("SaveCart: %v", err)
	}
	got, _ = GetCart(ctx, database, user)
	if len(got) != 1 || got[0].ID != items[1].ID {
		t.Errorf("expected replaced cart, got %+v", got)
	}

	// Carts are per user.
	other, _ := GetCart(ctx, database, uuid.New())
	if len(other) != 0 {
		t.Errorf("expected empty cart for another user, got %d items", len(other))
	}

	if err := ClearCart(ctx, database, user); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	got, _ = GetCart(ctx, database, user)
	if len(got) != 0 {
		t.Errorf("expected empty cart, got %d items", len(got))
	}
}
