package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

type createInvoiceRequest struct {
	PartyID       int64           `json:"party_id" validate:"required,gt=0"`
	OrderID       int64           `json:"order_id" validate:"omitempty,gt=0"`
	Date          time.Time       `json:"date"`
	Lines         []LineInput     `json:"lines" validate:"required,min=1,dive"`
	BillDiscount  decimal.Decimal `json:"bill_discount"`
	RoundOff      decimal.Decimal `json:"round_off"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cash bank card cheque"`
}

func (req createInvoiceRequest) toInput(companyID int64) CreateInput {
	return CreateInput{
		CompanyID:     companyID,
		PartyID:       req.PartyID,
		OrderID:       req.OrderID,
		Date:          req.Date,
		Lines:         req.Lines,
		BillDiscount:  req.BillDiscount,
		RoundOff:      req.RoundOff,
		PaidAmount:    req.PaidAmount,
		PaymentMethod: req.PaymentMethod,
	}
}

type createReturnRequest struct {
	ParentInvoiceID int64             `json:"parent_invoice_id" validate:"required,gt=0"`
	Date            time.Time         `json:"date"`
	Lines           []ReturnLineInput `json:"lines" validate:"required,min=1,dive"`
	RefundAmount    decimal.Decimal   `json:"refund_amount"`
	PaymentMethod   string            `json:"payment_method" validate:"omitempty,oneof=cash bank card cheque"`
}

func (req createReturnRequest) toInput(companyID int64) ReturnInput {
	return ReturnInput{
		CompanyID:       companyID,
		ParentInvoiceID: req.ParentInvoiceID,
		Date:            req.Date,
		Lines:           req.Lines,
		RefundAmount:    req.RefundAmount,
		PaymentMethod:   req.PaymentMethod,
	}
}

type paymentRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod   string          `json:"payment_method" validate:"omitempty,oneof=cash bank card cheque"`
	ReferenceNumber string          `json:"reference_number" validate:"omitempty,max=100"`
}

type discountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type convertChallanRequest struct {
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cash bank card cheque"`
}
