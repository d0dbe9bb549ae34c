package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/labsys/chemstock/internal/model"
)

// NewPurchaseRequest carries the submission fields for a purchase request.
// Attachment and AttachmentMIME are optional; when set, the attachment bytes
// are stored on the row.
type NewPurchaseRequest struct {
	MaterialName   string
	CASNumber      string
	Specifications string
	Amount         float64
	Unit           string
	FirstName      string
	Surname        string
	Email          string
	Comments       string
	Attachment     []byte
	AttachmentMIME string
}

// CreatePurchaseRequest validates and inserts a purchase request in the
// pending state. Purchase requests never reference a chemical: the material
// does not exist in inventory yet.
func CreatePurchaseRequest(ctx context.Context, db *sql.DB, p NewPurchaseRequest) (*model.PurchaseRequest, error) {
	p.MaterialName = strings.TrimSpace(p.MaterialName)
	p.CASNumber = strings.TrimSpace(p.CASNumber)
	p.Specifications = strings.TrimSpace(p.Specifications)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.Surname = strings.TrimSpace(p.Surname)
	p.Email = strings.TrimSpace(p.Email)
	p.Comments = strings.TrimSpace(p.Comments)

	if p.MaterialName == "" || p.CASNumber == "" || p.Specifications == "" {
		return nil, fmt.Errorf("material name, CAS number, and specifications required: %w", ErrValidation)
	}
	if p.FirstName == "" || p.Surname == "" {
		return nil, fmt.Errorf("first name and surname required: %w", ErrValidation)
	}
	if !strings.Contains(p.Email, "@") || !strings.Contains(p.Email, ".") {
		return nil, fmt.Errorf("valid email required: %w", ErrValidation)
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", ErrValidation)
	}

	var attachment any
	var attachmentMIME any
	if len(p.Attachment) > 0 {
		attachment = p.Attachment
		attachmentMIME = p.AttachmentMIME
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO purchase_requests
		     (material_name, cas_number, specifications, amount, unit,
		      first_name, surname, requester_email, comments,
		      attachment, attachment_mime, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.MaterialName, p.CASNumber, p.Specifications, p.Amount, p.Unit,
		p.FirstName, p.Surname, p.Email, p.Comments,
		attachment, attachmentMIME, model.PurchasePending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating purchase request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting purchase request id: %w", err)
	}

	return GetPurchaseRequest(ctx, db, id)
}

// GetPurchaseRequest returns a purchase request by ID, or ErrNotFound.
func GetPurchaseRequest(ctx context.Context, db *sql.DB, id int64) (*model.PurchaseRequest, error) {
	p := &model.PurchaseRequest{}
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, material_name, cas_number, specifications, amount, unit,
		        first_name, surname, requester_email, comments, attachment_mime,
		        status, created_at
		 FROM purchase_requests WHERE id = ?`, id,
	).Scan(&p.ID, &p.MaterialName, &p.CASNumber, &p.Specifications, &p.Amount, &p.Unit,
		&p.FirstName, &p.Surname, &p.Email, &p.Comments, &mime, &p.Status, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting purchase request: %w", err)
	}
	p.AttachmentMIME = mime.String
	return p, nil
}

// ListPurchaseRequests returns purchase requests ordered by descending ID,
// optionally filtered by exact status.
func ListPurchaseRequests(ctx context.Context, db *sql.DB, status model.PurchaseStatus) ([]model.PurchaseRequest, error) {
	query := `SELECT id, material_name, cas_number, specifications, amount, unit,
	                 first_name, surname, requester_email, comments, attachment_mime,
	                 status, created_at
	          FROM purchase_requests`
	var args []any

	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("unknown purchase status %q: %w", status, ErrValidation)
		}
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing purchase requests: %w", err)
	}
	defer rows.Close()

	var reqs []model.PurchaseRequest
	for rows.Next() {
		var p model.PurchaseRequest
		var mime sql.NullString
		if err := rows.Scan(&p.ID, &p.MaterialName, &p.CASNumber, &p.Specifications, &p.Amount, &p.Unit,
			&p.FirstName, &p.Surname, &p.Email, &p.Comments, &mime, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning purchase request: %w", err)
		}
		p.AttachmentMIME = mime.String
		reqs = append(reqs, p)
	}
	return reqs, rows.Err()
}

// SetPurchaseRequestStatus overwrites a purchase request's status. Purchase
// transitions never touch chemical stock.
func SetPurchaseRequestStatus(ctx context.Context, db *sql.DB, id int64, status model.PurchaseStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown purchase status %q: %w", status, ErrValidation)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE purchase_requests SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return fmt.Errorf("setting purchase request status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("purchase request %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetPurchaseAttachment returns a purchase request's attachment bytes and MIME
// type. Returns ErrNotFound if the request does not exist; nil data if it has
// no attachment.
func GetPurchaseAttachment(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT attachment, attachment_mime FROM purchase_requests WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("purchase request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting attachment: %w", err)
	}
	return data, mime.String, nil
}
