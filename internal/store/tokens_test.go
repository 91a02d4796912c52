package store

import (
	"context"
	"testing"
	"time"

	"github.com/spicestory/spicestory/internal/db"
)

func TestRevokeToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		revoke  []string
		check   string
		revoked bool
	}{
		{name: "fresh token", check: "jti-a", revoked: false},
		{name: "revoked token", revoke: []string{"jti-b"}, check: "jti-b", revoked: true},
		{name: "revoking twice is fine", revoke: []string{"jti-c", "jti-c"}, check: "jti-c", revoked: true},
		{name: "other token untouched", revoke: []string{"jti-d"}, check: "jti-e", revoked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, jti := range tt.revoke {
				if err := RevokeToken(ctx, database, jti, time.Now().Add(time.Hour)); err != nil {
					t.Fatalf("RevokeToken(%s): %v", jti, err)
				}
			}
			got, err := IsTokenRevoked(ctx, database, tt.check)
			if err != nil {
				t.Fatalf("IsTokenRevoked: %v", err)
			}
			if got != tt.revoked {
				t.Errorf("IsTokenRevoked(%s) = %v, want %v", tt.check, got, tt.revoked)
			}
		})
	}
}

func TestExpiredRevocationIsIgnored(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := RevokeToken(ctx, database, "old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	revoked, err := IsTokenRevoked(ctx, database, "old")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected expired revocation to be ignored")
	}
}

func TestPruneRevokedTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	for jti, exp := range map[string]time.Time{
		"a": now.Add(-2 * time.Hour),
		"b": now.Add(-time.Minute),
		"c": now.Add(time.Hour),
	} {
		if err := RevokeToken(ctx, database, jti, exp); err != nil {
			t.Fatalf("RevokeToken(%s): %v", jti, err)
		}
	}

	n, err := PruneRevokedTokens(ctx, database, now)
	if err != nil {
		t.Fatalf("PruneRevokedTokens: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}
	if revoked, _ := IsTokenRevoked(ctx, database, "c"); !revoked {
		t.Error("expected live revocation to remain")
	}

	n, err = PruneRevokedTokens(ctx, database, now)
	if err != nil || n != 0 {
		t.Errorf("second prune = %d, %v; want 0, nil", n, err)
	}
}
