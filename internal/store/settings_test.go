package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/labsys/chemstock/internal/db"
)

func TestGetJWTSecretPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	second, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret (second): %v", err)
	}
	if first != second {
		t.Error("secret changed between calls")
	}
}

func TestAdminPasswordHash(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := GetAdminPasswordHash(ctx, database)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound before first set, got %v", err)
	}

	if err := SetAdminPasswordHash(ctx, database, "hash-one"); err != nil {
		t.Fatalf("SetAdminPasswordHash: %v", err)
	}
	got, err := GetAdminPasswordHash(ctx, database)
	if err != nil || got != "hash-one" {
		t.Errorf("expected hash-one, got %q (err %v)", got, err)
	}

	// Replacing works (password change).
	if err := SetAdminPasswordHash(ctx, database, "hash-two"); err != nil {
		t.Fatalf("SetAdminPasswordHash (replace): %v", err)
	}
	got, _ = GetAdminPasswordHash(ctx, database)
	if got != "hash-two" {
		t.Errorf("expected hash-two, got %q", got)
	}
}

func TestTokenRevocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("unknown JTI reported as revoked")
	}

	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	revoked, _ = IsTokenRevoked(ctx, database, "jti-1")
	if !revoked {
		t.Error("revoked JTI not reported as revoked")
	}

	// Revoking twice is a no-op.
	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("RevokeToken (repeat): %v", err)
	}
}

func TestRevokeTokenCleansExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	RevokeToken(ctx, database, "stale", time.Now().Add(-time.Hour))
	RevokeToken(ctx, database, "fresh", time.Now().Add(time.Hour))

	revoked, _ := IsTokenRevoked(ctx, database, "stale")
	if revoked {
		t.Error("expected expired revocation to be cleaned up")
	}
	revoked, _ = IsTokenRevoked(ctx, database, "fresh")
	if !revoked {
		t.Error("fresh revocation was dropped")
	}
}
