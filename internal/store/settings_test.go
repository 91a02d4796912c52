package store

import (
	"context"
	"testing"

	"github.com/spicestory/spicestory/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestGetOrCreateSettingKeepsFirstValue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	v, err := GetOrCreateSetting(ctx, database, "greeting", func() (string, error) { return "namaste", nil })
	if err != nil {
		t.Fatal(err)
	}
	if v != "namaste" {
		t.Fatalf("expected namaste, got %q", v)
	}

	v, _ = GetOrCreateSetting(ctx, database, "greeting", func() (string, error) { return "hello", nil })
	if v != "namaste" {
		t.Errorf("expected stored value to win, got %q", v)
	}
}
