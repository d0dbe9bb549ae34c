package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/labsys/chemstock/internal/model"
)

// ListChemicals returns chemicals ordered by name, optionally filtered by a
// case-insensitive substring match on the name.
func ListChemicals(ctx context.Context, db *sql.DB, search string) ([]model.Chemical, error) {
	var rows *sql.Rows
	var err error

	if search != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT id, name, amount, unit, location, notes
			 FROM chemicals
			 WHERE lower(name) LIKE '%' || lower(?) || '%'
			 ORDER BY name ASC`, search,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, name, amount, unit, location, notes
			 FROM chemicals ORDER BY name ASC`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing chemicals: %w", err)
	}
	defer rows.Close()

	var chems []model.Chemical
	for rows.Next() {
		var c model.Chemical
		if err := rows.Scan(&c.ID, &c.Name, &c.Amount, &c.Unit, &c.Location, &c.Notes); err != nil {
			return nil, fmt.Errorf("scanning chemical: %w", err)
		}
		chems = append(chems, c)
	}
	return chems, rows.Err()
}

// GetChemical returns a chemical by ID, or ErrNotFound.
func GetChemical(ctx context.Context, db *sql.DB, id int64) (*model.Chemical, error) {
	c := &model.Chemical{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, amount, unit, location, notes FROM chemicals WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Amount, &c.Unit, &c.Location, &c.Notes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chemical %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting chemical: %w", err)
	}
	return c, nil
}

// UpsertChemical inserts a chemical or, if one with the same (trimmed) name
// exists, overwrites its amount, unit, location, and notes. Two calls with the
// same name always converge to a single record.
func UpsertChemical(ctx context.Context, db *sql.DB, name string, amount float64, unit, location, notes string) (*model.Chemical, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("chemical name required: %w", ErrValidation)
	}
	unit = strings.TrimSpace(unit)
	location = strings.TrimSpace(location)
	notes = strings.TrimSpace(notes)

	_, err := db.ExecContext(ctx,
		`INSERT INTO chemicals (name, amount, unit, location, notes)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
		     amount = excluded.amount,
		     unit = excluded.unit,
		     location = excluded.location,
		     notes = excluded.notes`,
		name, amount, unit, location, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting chemical: %w", err)
	}

	c := &model.Chemical{}
	err = db.QueryRowContext(ctx,
		`SELECT id, name, amount, unit, location, notes FROM chemicals WHERE name = ?`, name,
	).Scan(&c.ID, &c.Name, &c.Amount, &c.Unit, &c.Location, &c.Notes)
	if err != nil {
		return nil, fmt.Errorf("reading back chemical: %w", err)
	}
	return c, nil
}

// AdjustStock adds delta (may be negative) to a chemical's amount and returns
// the new amount. It does not enforce non-negativity: a direct administrative
// correction may drive stock to zero or below. The approval path carries its
// own sufficiency check and never calls this with more than is available.
func AdjustStock(ctx context.Context, db *sql.DB, id int64, delta float64) (float64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current float64
	err = tx.QueryRowContext(ctx,
		`SELECT amount FROM chemicals WHERE id = ?`, id,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("chemical %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reading current amount: %w", err)
	}

	newAmount := current + delta
	_, err = tx.ExecContext(ctx,
		`UPDATE chemicals SET amount = ? WHERE id = ?`, newAmount, id,
	)
	if err != nil {
		return 0, fmt.Errorf("adjusting stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing adjustment: %w", err)
	}
	return newAmount, nil
}
