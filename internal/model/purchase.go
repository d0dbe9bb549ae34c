package model

import "time"

// PurchaseStatus is the lifecycle state of a purchase request.
type PurchaseStatus string

// Purchase request statuses. Mirrors the request lifecycle with
// "purchased" as the terminal success state; never touches inventory
// because the material does not exist in stock yet.
const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseApproved  PurchaseStatus = "approved"
	PurchaseRejected  PurchaseStatus = "rejected"
	PurchasePurchased PurchaseStatus = "purchased"
)

// Valid reports whether s is a known purchase request status.
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchasePending, PurchaseApproved, PurchaseRejected, PurchasePurchased:
		return true
	}
	return false
}

// PurchaseRequest is a demand for a material not currently in inventory,
// routed to procurement. The attachment (safety data sheet, quote) is
// stored on the row; only its MIME type is exposed here.
type PurchaseRequest struct {
	ID             int64          `json:"id"`
	MaterialName   string         `json:"material_name"`
	CASNumber      string         `json:"cas_number"`
	Specifications string         `json:"specifications"`
	Amount         float64        `json:"amount"`
	Unit           string         `json:"unit"`
	FirstName      string         `json:"first_name"`
	Surname        string         `json:"surname"`
	Email          string         `json:"requester_email"`
	Comments       string         `json:"comments,omitempty"`
	AttachmentMIME string         `json:"attachment_mime,omitempty"`
	Status         PurchaseStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}
