package domain

import "time"

type InvoiceLine struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	GrandTotal      float64 `json:"grand_total"`
}

// Invoice is the frozen projection of the cart at checkout time. Once issued
// it is never recomputed; the display layer only formats these fields.
type Invoice struct {
	InvoiceID       string        `json:"invoice_id"`
	IssuedAt        time.Time     `json:"issued_at"`
	Lines           []InvoiceLine `json:"lines"`
	Subtotal        float64       `json:"subtotal"`
	DiscountPercent float64       `json:"discount_percent"`
	DiscountAmount  float64       `json:"discount_amount"`
	GrandTotal      float64       `json:"grand_total"`
}
