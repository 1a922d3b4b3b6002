package masterdata

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWeightedAverageCost(t *testing.T) {
	cases := []struct {
		name        string
		onHand      float64
		currentAvg  string
		receiptQty  float64
		receiptCost string
		want        string
	}{
		{"equal halves", 5, "50", 5, "60", "55"},
		{"new stock dominates", 1, "100", 9, "10", "19"},
		{"first receipt", 0, "0", 4, "25", "25"},
		{"fractional result", 3, "10", 1, "11", "10.25"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeightedAverageCost(tc.onHand, d(tc.currentAvg), tc.receiptQty, d(tc.receiptCost))
			require.True(t, d(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestWeightedAverageCostZeroQty(t *testing.T) {
	got := WeightedAverageCost(0, d("50"), 0, d("60"))
	require.True(t, got.IsZero(), "no quantity means no meaningful average")
}
