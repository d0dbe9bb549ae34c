package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/labsys/chemstock/internal/model"
)

// CreateRequest validates and inserts an in-stock request in the pending state.
func CreateRequest(ctx context.Context, db *sql.DB, chemID int64, firstName, surname, email string, quantity float64) (*model.Request, error) {
	firstName = strings.TrimSpace(firstName)
	surname = strings.TrimSpace(surname)
	email = strings.TrimSpace(email)

	if firstName == "" || surname == "" {
		return nil, fmt.Errorf("first name and surname required: %w", ErrValidation)
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return nil, fmt.Errorf("valid email required: %w", ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}

	// The referenced chemical must exist.
	if _, err := GetChemical(ctx, db, chemID); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO requests (chem_id, first_name, surname, requester_email, quantity, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		chemID, firstName, surname, email, quantity, model.RequestPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting request id: %w", err)
	}

	return GetRequest(ctx, db, id)
}

// GetRequest returns a request by ID with the chemical name and unit joined,
// or ErrNotFound.
func GetRequest(ctx context.Context, db *sql.DB, id int64) (*model.Request, error) {
	r := &model.Request{}
	err := db.QueryRowContext(ctx,
		`SELECT r.id, r.chem_id, r.first_name, r.surname, r.requester_email,
		        r.quantity, r.status, r.created_at,
		        c.name AS chemical_name, c.unit
		 FROM requests r
		 JOIN chemicals c ON c.id = r.chem_id
		 WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.ChemID, &r.FirstName, &r.Surname, &r.Email,
		&r.Quantity, &r.Status, &r.CreatedAt, &r.ChemicalName, &r.Unit)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return r, nil
}

// ListRequests returns requests ordered by descending ID (most recent first),
// optionally filtered by exact status.
func ListRequests(ctx context.Context, db *sql.DB, status model.RequestStatus) ([]model.Request, error) {
	query := `SELECT r.id, r.chem_id, r.first_name, r.surname, r.requester_email,
	                 r.quantity, r.status, r.created_at,
	                 c.name AS chemical_name, c.unit
	          FROM requests r
	          JOIN chemicals c ON c.id = r.chem_id`
	var args []any

	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("unknown request status %q: %w", status, ErrValidation)
		}
		query += ` WHERE r.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY r.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var reqs []model.Request
	for rows.Next() {
		var r model.Request
		if err := rows.Scan(&r.ID, &r.ChemID, &r.FirstName, &r.Surname, &r.Email,
			&r.Quantity, &r.Status, &r.CreatedAt, &r.ChemicalName, &r.Unit); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// SetRequestStatus overwrites a request's status. This is the escape hatch for
// transitions that do not touch inventory (reject, mark fulfilled); the
// approve transition goes through the approval engine instead.
func SetRequestStatus(ctx context.Context, db *sql.DB, id int64, status model.RequestStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown request status %q: %w", status, ErrValidation)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("setting request status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	return nil
}
