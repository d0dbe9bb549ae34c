package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// Settings keys.
const (
	settingJWTSecret     = "jwt_secret"
	settingAdminPassword = "admin_password_hash"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		settingJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, settingJWTSecret,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt secret: %w", err)
	}

	return secret, nil
}

// GetAdminPasswordHash returns the stored bcrypt hash of the admin password,
// or ErrNotFound when no credential has been set yet (first run).
func GetAdminPasswordHash(ctx context.Context, db *sql.DB) (string, error) {
	var hash string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, settingAdminPassword,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("admin credential: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("querying admin credential: %w", err)
	}
	return hash, nil
}

// SetAdminPasswordHash stores (or replaces) the bcrypt hash of the admin
// password.
func SetAdminPasswordHash(ctx context.Context, db *sql.DB, hash string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		settingAdminPassword, hash,
	)
	if err != nil {
		return fmt.Errorf("storing admin credential: %w", err)
	}
	return nil
}
