package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyFulfillmentCapsAtOrdered(t *testing.T) {
	line := OrderLine{OrderedQty: 5, FulfilledQty: 3}

	applied := ApplyFulfillment(&line, 4)
	require.Equal(t, float64(2), applied)
	require.Equal(t, float64(5), line.FulfilledQty)

	applied = ApplyFulfillment(&line, 1)
	require.Equal(t, float64(0), applied, "a full line accepts nothing more")
	require.Equal(t, float64(5), line.FulfilledQty)
}

func TestApplyFulfillmentIgnoresNonPositiveQty(t *testing.T) {
	line := OrderLine{OrderedQty: 5, FulfilledQty: 1}
	require.Equal(t, float64(0), ApplyFulfillment(&line, 0))
	require.Equal(t, float64(0), ApplyFulfillment(&line, -2))
	require.Equal(t, float64(1), line.FulfilledQty)
}

func TestComputeStatus(t *testing.T) {
	cases := []struct {
		name    string
		kind    OrderKind
		current OrderStatus
		lines   []OrderLine
		want    OrderStatus
	}{
		{"nothing fulfilled", OrderKindSale, OrderStatusPending,
			[]OrderLine{{OrderedQty: 5}}, OrderStatusPending},
		{"partially fulfilled", OrderKindSale, OrderStatusPending,
			[]OrderLine{{OrderedQty: 5, FulfilledQty: 2}}, OrderStatusPartial},
		{"sale fully fulfilled", OrderKindSale, OrderStatusPartial,
			[]OrderLine{{OrderedQty: 5, FulfilledQty: 5}}, OrderStatusFulfilled},
		{"purchase fully fulfilled", OrderKindPurchase, OrderStatusPartial,
			[]OrderLine{{OrderedQty: 5, FulfilledQty: 5}}, OrderStatusReceived},
		{"partial across lines", OrderKindSale, OrderStatusPending,
			[]OrderLine{{OrderedQty: 2, FulfilledQty: 2}, {OrderedQty: 3}}, OrderStatusPartial},
		{"cancelled is sticky", OrderKindSale, OrderStatusCancelled,
			[]OrderLine{{OrderedQty: 5, FulfilledQty: 5}}, OrderStatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ComputeStatus(tc.kind, tc.current, tc.lines))
		})
	}
}
