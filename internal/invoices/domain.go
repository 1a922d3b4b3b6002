package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceKind enumerates the invoice family. Each kind drives a different
// journal entry pattern and stock direction.
type InvoiceKind string

const (
	KindSale           InvoiceKind = "sale"
	KindPurchase       InvoiceKind = "purchase"
	KindSaleReturn     InvoiceKind = "sale_return"
	KindPurchaseReturn InvoiceKind = "purchase_return"
	KindChallan        InvoiceKind = "challan"
)

// InvoiceStatus is a soft-delete flag. Journal rows deliberately outlive
// a deleted invoice, so no foreign key ties them together.
type InvoiceStatus string

const (
	StatusActive    InvoiceStatus = "active"
	StatusDeleted   InvoiceStatus = "deleted"
	StatusConverted InvoiceStatus = "converted"
)

// Invoice carries snapshot financial fields written once at creation.
// TotalAmount/PaidAmount/DueAmount are cached hints only; current state
// is always recomputed from the journal by the balance reconstructor.
type Invoice struct {
	ID              int64           `json:"id"`
	CompanyID       int64           `json:"company_id"`
	Kind            InvoiceKind     `json:"kind"`
	Number          string          `json:"number"`
	PartyID         int64           `json:"party_id"`
	OrderID         int64           `json:"order_id,omitempty"`
	ParentInvoiceID int64           `json:"parent_invoice_id,omitempty"`
	Date            time.Time       `json:"date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Discount        decimal.Decimal `json:"discount"`
	RoundOff        decimal.Decimal `json:"round_off"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	DueAmount       decimal.Decimal `json:"due_amount"`
	Profit          decimal.Decimal `json:"profit"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Status          InvoiceStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Lines           []Line          `json:"lines,omitempty"`
}

// Line is one invoice line item. UnitCost snapshots the product's
// weighted-average cost at posting time for profit and COGS figures.
type Line struct {
	ID                 int64           `json:"id"`
	InvoiceID          int64           `json:"invoice_id"`
	ProductID          int64           `json:"product_id"`
	Quantity           float64         `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPct        decimal.Decimal `json:"discount_pct"`
	CurrencyConversion decimal.Decimal `json:"currency_conversion"`
	LineTotal          decimal.Decimal `json:"line_total"`
	LineNet            decimal.Decimal `json:"line_net"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
}

// LineInput describes one requested line item.
type LineInput struct {
	ProductID          int64           `json:"product_id" validate:"required"`
	Quantity           float64         `json:"quantity" validate:"gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPct        decimal.Decimal `json:"discount_pct"`
	CurrencyConversion decimal.Decimal `json:"currency_conversion"`
}

// CreateInput describes a sale, purchase, or challan invoice request.
type CreateInput struct {
	CompanyID     int64
	PartyID       int64
	OrderID       int64
	Date          time.Time
	Lines         []LineInput
	BillDiscount  decimal.Decimal
	RoundOff      decimal.Decimal
	PaidAmount    decimal.Decimal
	PaymentMethod string
}

// ReturnLineInput names a returned product and quantity. Unit economics
// come from the parent invoice's lines.
type ReturnLineInput struct {
	ProductID int64   `json:"product_id" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
}

// ReturnInput describes a return against an existing invoice.
type ReturnInput struct {
	CompanyID       int64
	ParentInvoiceID int64
	Date            time.Time
	Lines           []ReturnLineInput
	RefundAmount    decimal.Decimal
	PaymentMethod   string
}
