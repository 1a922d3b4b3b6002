package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind separates sales orders from purchase orders.
type OrderKind string

const (
	OrderKindSale     OrderKind = "sale"
	OrderKindPurchase OrderKind = "purchase"
)

// OrderStatus is derived from the lines' cumulative fulfillment.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPartial   OrderStatus = "partial"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a sales or purchase order. Invoices linked to the order move
// its per-line fulfilled quantity, never past the ordered quantity.
type Order struct {
	ID        int64       `json:"id"`
	CompanyID int64       `json:"company_id"`
	Kind      OrderKind   `json:"kind"`
	PartyID   int64       `json:"party_id"`
	Number    string      `json:"number"`
	Status    OrderStatus `json:"status"`
	Date      time.Time   `json:"date"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Lines     []OrderLine `json:"lines,omitempty"`
}

// OrderLine tracks ordered versus fulfilled quantity for one product.
type OrderLine struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	OrderedQty   float64         `json:"ordered_qty"`
	FulfilledQty float64         `json:"fulfilled_qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// ApplyFulfillment adds qty to the line's fulfilled quantity, capped at
// the ordered quantity. Returns the quantity actually applied.
func ApplyFulfillment(line *OrderLine, qty float64) float64 {
	if qty <= 0 {
		return 0
	}
	remaining := line.OrderedQty - line.FulfilledQty
	if remaining <= 0 {
		return 0
	}
	applied := qty
	if applied > remaining {
		applied = remaining
	}
	line.FulfilledQty += applied
	return applied
}

// ComputeStatus derives the order status from its lines. Cancelled orders
// keep their status regardless of fulfillment.
func ComputeStatus(kind OrderKind, current OrderStatus, lines []OrderLine) OrderStatus {
	if current == OrderStatusCancelled {
		return OrderStatusCancelled
	}
	var ordered, fulfilled float64
	for _, line := range lines {
		ordered += line.OrderedQty
		fulfilled += line.FulfilledQty
	}
	switch {
	case fulfilled <= 0:
		return OrderStatusPending
	case fulfilled < ordered:
		return OrderStatusPartial
	case kind == OrderKindPurchase:
		return OrderStatusReceived
	default:
		return OrderStatusFulfilled
	}
}
