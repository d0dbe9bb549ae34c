// Package approval implements the request approval workflow: the status
// transition that reserves stock. Approving a request deducts its quantity
// from the chemical exactly once, inside a single transaction, so that two
// concurrent approvals cannot both pass the sufficiency check against a stale
// amount and jointly oversell stock.
package approval

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labsys/chemstock/internal/model"
	"github.com/labsys/chemstock/internal/store"
)

// Denial is an expected, user-facing reason an approval did not happen.
// It is a value the caller branches on, not an error: the system worked,
// the request just cannot be approved.
type Denial struct {
	Reason string  `json:"reason"`
	Have   float64 `json:"have,omitempty"`
	Need   float64 `json:"need,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// Decision is the outcome of an approval attempt. Exactly one of the two
// branches is populated: Approved with the chemical's new stock level, or
// Denial with the reason.
type Decision struct {
	Approved  bool    `json:"approved"`
	NewAmount float64 `json:"new_amount,omitempty"`
	Denial    *Denial `json:"denial,omitempty"`
}

// Approve attempts to approve the request with the given ID, deducting its
// quantity from the associated chemical's stock. The load, sufficiency check,
// deduction, and status flip all happen in one transaction: on any denial
// nothing is mutated.
//
// Requests already approved or fulfilled are denied so a retry can never
// deduct twice. Rejected requests may still be approved; that matches the
// original workflow, where an admin can reverse a rejection.
func Approve(ctx context.Context, db *sql.DB, requestID int64) (*Decision, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var chemID int64
	var need float64
	var status model.RequestStatus
	err = tx.QueryRowContext(ctx,
		`SELECT chem_id, quantity, status FROM requests WHERE id = ?`, requestID,
	).Scan(&chemID, &need, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request %d: %w", requestID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading request: %w", err)
	}

	// Approval is not idempotent-retriable: a second attempt must not
	// deduct stock again.
	if status == model.RequestApproved || status == model.RequestFulfilled {
		return &Decision{Denial: &Denial{
			Reason: fmt.Sprintf("already %s", status),
		}}, nil
	}

	var have float64
	var unit string
	err = tx.QueryRowContext(ctx,
		`SELECT amount, unit FROM chemicals WHERE id = ?`, chemID,
	).Scan(&have, &unit)
	if err == sql.ErrNoRows {
		// Orphaned request; chemicals are never deleted in normal operation.
		return nil, fmt.Errorf("chemical %d: %w", chemID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading chemical: %w", err)
	}

	// Submission already enforces positivity; this guards against data
	// corruption reaching the deduction.
	if need <= 0 {
		return &Decision{Denial: &Denial{Reason: "invalid quantity", Need: need}}, nil
	}

	if have < need {
		return &Decision{Denial: &Denial{
			Reason: fmt.Sprintf("insufficient stock: have %g %s, need %g %s", have, unit, need, unit),
			Have:   have,
			Need:   need,
			Unit:   unit,
		}}, nil
	}

	newAmount := have - need
	if _, err := tx.ExecContext(ctx,
		`UPDATE chemicals SET amount = ? WHERE id = ?`, newAmount, chemID,
	); err != nil {
		return nil, fmt.Errorf("deducting stock: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE id = ?`, model.RequestApproved, requestID,
	); err != nil {
		return nil, fmt.Errorf("updating request status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing approval: %w", err)
	}

	return &Decision{Approved: true, NewAmount: newAmount}, nil
}
