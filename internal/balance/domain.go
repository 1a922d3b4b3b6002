package balance

import (
	"github.com/shopspring/decimal"
)

// InvoiceDue is a reconstructed financial position for one invoice. Every
// figure except Total comes from replaying journal rows and linked return
// invoices; the snapshot paid/due columns on the invoice are never read.
type InvoiceDue struct {
	InvoiceID int64           `json:"invoice_id"`
	Number    string          `json:"number"`
	Total     decimal.Decimal `json:"total"`
	Payments  decimal.Decimal `json:"payments"`
	Discounts decimal.Decimal `json:"discounts"`
	Returns   decimal.Decimal `json:"returns"`
	Refunds   decimal.Decimal `json:"refunds"`
	Due       decimal.Decimal `json:"due"`
}

// PartyDue aggregates a customer's receivable or a supplier's payable
// across all active invoices.
type PartyDue struct {
	PartyID  int64           `json:"party_id"`
	Invoices []InvoiceDue    `json:"invoices"`
	TotalDue decimal.Decimal `json:"total_due"`
}
