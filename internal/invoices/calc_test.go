package invoices

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/folio-erp/folio-erp/internal/shared"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine(t *testing.T) {
	lineTotal, lineNet := ComputeLine(LineInput{
		ProductID:   1,
		Quantity:    2,
		UnitPrice:   d("100"),
		DiscountPct: d("10"),
	})
	require.True(t, d("200").Equal(lineTotal), "lineTotal = %s", lineTotal)
	require.True(t, d("180").Equal(lineNet), "lineNet = %s", lineNet)
}

func TestComputeLineDefaultsConversion(t *testing.T) {
	lineTotal, lineNet := ComputeLine(LineInput{ProductID: 1, Quantity: 3, UnitPrice: d("50")})
	require.True(t, d("150").Equal(lineTotal))
	require.True(t, d("150").Equal(lineNet))
}

func TestComputeLineCurrencyConversion(t *testing.T) {
	lineTotal, _ := ComputeLine(LineInput{
		ProductID:          1,
		Quantity:           2,
		UnitPrice:          d("10"),
		CurrencyConversion: d("1.5"),
	})
	require.True(t, d("30").Equal(lineTotal))
}

func TestComputeTotalsPrecedence(t *testing.T) {
	// Per-line % first, flat bill discount second, round-off last.
	totals, err := ComputeTotals([]LineInput{
		{ProductID: 1, Quantity: 2, UnitPrice: d("100"), DiscountPct: d("10")},
	}, d("20"), decimal.Zero)
	require.NoError(t, err)
	require.True(t, d("200").Equal(totals.Gross))
	require.True(t, d("20").Equal(totals.LineDiscount))
	require.True(t, d("180").Equal(totals.Subtotal))
	require.True(t, d("160").Equal(totals.FinalTotal))
}

func TestComputeTotalsRoundOff(t *testing.T) {
	totals, err := ComputeTotals([]LineInput{
		{ProductID: 1, Quantity: 1, UnitPrice: d("99.60")},
	}, decimal.Zero, d("0.40"))
	require.NoError(t, err)
	require.True(t, d("100").Equal(totals.FinalTotal))
}

func TestComputeTotalsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		lines []LineInput
		bill  decimal.Decimal
		round decimal.Decimal
	}{
		{"no lines", nil, decimal.Zero, decimal.Zero},
		{"zero qty", []LineInput{{ProductID: 1, Quantity: 0, UnitPrice: d("10")}}, decimal.Zero, decimal.Zero},
		{"negative price", []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: d("-5")}}, decimal.Zero, decimal.Zero},
		{"discount over 100", []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: d("10"), DiscountPct: d("101")}}, decimal.Zero, decimal.Zero},
		{"bill discount over subtotal", []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: d("10")}}, d("11"), decimal.Zero},
		{"negative bill discount", []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: d("10")}}, d("-1"), decimal.Zero},
		{"round-off drives negative", []LineInput{{ProductID: 1, Quantity: 1, UnitPrice: d("10")}}, d("10"), d("-1")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeTotals(tc.lines, tc.bill, tc.round)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestAllocateBillDiscountProportional(t *testing.T) {
	shares := AllocateBillDiscount([]decimal.Decimal{d("180"), d("20")}, d("20"))
	require.Len(t, shares, 2)
	require.True(t, d("18").Equal(shares[0]), "share[0] = %s", shares[0])
	require.True(t, d("2").Equal(shares[1]), "share[1] = %s", shares[1])
}

func TestAllocateBillDiscountRemainderOnLastLine(t *testing.T) {
	shares := AllocateBillDiscount([]decimal.Decimal{d("10"), d("10"), d("10")}, d("10"))
	var sum decimal.Decimal
	for _, s := range shares {
		sum = sum.Add(s)
	}
	require.True(t, d("10").Equal(sum), "shares must sum to the discount, got %s", sum)
}

func TestAllocateBillDiscountZero(t *testing.T) {
	shares := AllocateBillDiscount([]decimal.Decimal{d("100")}, decimal.Zero)
	require.Len(t, shares, 1)
	require.True(t, shares[0].IsZero())
}
