package invoices

import (
	"github.com/shopspring/decimal"

	"github.com/folio-erp/folio-erp/internal/shared"
)

var hundred = decimal.NewFromInt(100)

// Totals aggregates invoice amounts. Precedence is fixed: per-line %
// discount first, then the flat bill-level discount on the discounted
// subtotal, then round-off last.
type Totals struct {
	Gross        decimal.Decimal
	LineDiscount decimal.Decimal
	Subtotal     decimal.Decimal
	FinalTotal   decimal.Decimal
}

// ComputeLine returns (lineTotal, lineNet) for one line input.
// lineTotal = price × qty × conversion; lineNet applies the per-line
// percentage discount.
func ComputeLine(in LineInput) (decimal.Decimal, decimal.Decimal) {
	conversion := in.CurrencyConversion
	if conversion.IsZero() {
		conversion = decimal.NewFromInt(1)
	}
	lineTotal := in.UnitPrice.Mul(decimal.NewFromFloat(in.Quantity)).Mul(conversion)
	lineNet := lineTotal.Mul(hundred.Sub(in.DiscountPct)).Div(hundred)
	return lineTotal.Round(2), lineNet.Round(2)
}

// ComputeTotals runs the full precedence chain over the lines.
func ComputeTotals(lines []LineInput, billDiscount, roundOff decimal.Decimal) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, shared.Validationf("invoice requires at least one line")
	}
	var t Totals
	for i, line := range lines {
		if line.ProductID == 0 {
			return Totals{}, shared.Validationf("line %d missing product", i)
		}
		if line.Quantity <= 0 {
			return Totals{}, shared.Validationf("line %d quantity must be positive", i)
		}
		if line.UnitPrice.IsNegative() {
			return Totals{}, shared.Validationf("line %d unit price must not be negative", i)
		}
		if line.DiscountPct.IsNegative() || line.DiscountPct.GreaterThan(hundred) {
			return Totals{}, shared.Validationf("line %d discount%% outside 0-100", i)
		}
		lineTotal, lineNet := ComputeLine(line)
		t.Gross = t.Gross.Add(lineTotal)
		t.Subtotal = t.Subtotal.Add(lineNet)
	}
	t.LineDiscount = t.Gross.Sub(t.Subtotal)
	if billDiscount.IsNegative() {
		return Totals{}, shared.Validationf("bill discount must not be negative")
	}
	if billDiscount.GreaterThan(t.Subtotal) {
		return Totals{}, shared.Validationf("bill discount %s exceeds subtotal %s", billDiscount, t.Subtotal)
	}
	t.FinalTotal = t.Subtotal.Sub(billDiscount).Add(roundOff).Round(2)
	if t.FinalTotal.IsNegative() {
		return Totals{}, shared.Validationf("round-off drives total negative")
	}
	return t, nil
}

// AllocateBillDiscount distributes a flat bill discount across lines in
// proportion to each line's post-line-discount share of the subtotal.
// The last line absorbs the rounding remainder so shares always sum to
// the discount exactly. Purchase invoices use the allocation to update
// each product's weighted-average effective cost.
func AllocateBillDiscount(lineNets []decimal.Decimal, billDiscount decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(lineNets))
	if len(lineNets) == 0 || billDiscount.LessThanOrEqual(decimal.Zero) {
		return shares
	}
	var subtotal decimal.Decimal
	for _, net := range lineNets {
		subtotal = subtotal.Add(net)
	}
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return shares
	}
	var allocated decimal.Decimal
	for i, net := range lineNets {
		if i == len(lineNets)-1 {
			shares[i] = billDiscount.Sub(allocated)
			break
		}
		share := billDiscount.Mul(net).Div(subtotal).Round(2)
		shares[i] = share
		allocated = allocated.Add(share)
	}
	return shares
}
