package domain

import "time"

// CartLine references a stock item by id. Name and UnitPrice are snapshots
// taken from the stock item when the line was created or last touched, so the
// cart view survives later stock edits.
type CartLine struct {
	ItemID    string    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	AddedAt   time.Time `json:"added_at"`
}
