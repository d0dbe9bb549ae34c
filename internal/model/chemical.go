package model

// Chemical represents an inventory line item (quantity-based stock).
type Chemical struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Location string  `json:"location,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}
