package model

import "time"

// RequestStatus is the lifecycle state of an in-stock request.
type RequestStatus string

// Request statuses. A request starts pending, an admin approves or rejects
// it, and an approved request is marked fulfilled once handed out.
const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestFulfilled RequestStatus = "fulfilled"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestFulfilled:
		return true
	}
	return false
}

// Request is a demand against existing chemical stock. Approving it
// deducts the quantity from the chemical exactly once.
type Request struct {
	ID        int64         `json:"id"`
	ChemID    int64         `json:"chem_id"`
	FirstName string        `json:"first_name"`
	Surname   string        `json:"surname"`
	Email     string        `json:"requester_email"`
	Quantity  float64       `json:"quantity"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`

	// Joined fields (not always populated).
	ChemicalName string `json:"chemical_name,omitempty"`
	Unit         string `json:"unit,omitempty"`
}
