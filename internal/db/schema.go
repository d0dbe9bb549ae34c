package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS chemicals (
    id       INTEGER PRIMARY KEY,
    name     TEXT NOT NULL UNIQUE,
    amount   REAL NOT NULL DEFAULT 0,
    unit     TEXT NOT NULL DEFAULT 'g',
    location TEXT NOT NULL DEFAULT '',
    notes    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS requests (
    id              INTEGER PRIMARY KEY,
    chem_id         INTEGER NOT NULL REFERENCES chemicals(id),
    first_name      TEXT NOT NULL,
    surname         TEXT NOT NULL,
    requester_email TEXT NOT NULL,
    quantity        REAL NOT NULL,
    status          TEXT NOT NULL DEFAULT 'pending'
                    CHECK (status IN ('pending', 'approved', 'rejected', 'fulfilled')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);

CREATE TABLE IF NOT EXISTS purchase_requests (
    id              INTEGER PRIMARY KEY,
    material_name   TEXT NOT NULL,
    cas_number      TEXT NOT NULL,
    specifications  TEXT NOT NULL,
    amount          REAL NOT NULL,
    unit            TEXT NOT NULL DEFAULT 'g',
    first_name      TEXT NOT NULL,
    surname         TEXT NOT NULL,
    requester_email TEXT NOT NULL,
    comments        TEXT NOT NULL DEFAULT '',
    attachment      BLOB,
    attachment_mime TEXT,
    status          TEXT NOT NULL DEFAULT 'pending'
                    CHECK (status IN ('pending', 'approved', 'rejected', 'purchased')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_purchase_requests_status ON purchase_requests(status);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
