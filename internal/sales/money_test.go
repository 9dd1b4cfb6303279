package sales

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineItemsTotal(t *testing.T) {
	total, err := LineItemsTotal([]LineItem{
		{Description: "coffee", Quantity: 3, UnitPrice: 10},
		{Description: "panela", Quantity: 2, UnitPrice: 25.5},
	})
	require.NoError(t, err)
	require.InDelta(t, 81.0, total, 1e-9)
}

func TestLineItemsTotalEmpty(t *testing.T) {
	total, err := LineItemsTotal(nil)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestLineItemsTotalZeroPriceAllowed(t *testing.T) {
	total, err := LineItemsTotal([]LineItem{
		{Description: "sample", Quantity: 5, UnitPrice: 0},
	})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestLineItemsTotalRejectsNegatives(t *testing.T) {
	_, err := LineItemsTotal([]LineItem{
		{Description: "coffee", Quantity: -1, UnitPrice: 10},
	})
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = LineItemsTotal([]LineItem{
		{Description: "coffee", Quantity: 1, UnitPrice: -10},
	})
	require.ErrorIs(t, err, ErrInvalidItem)
}

func TestPaymentsTotal(t *testing.T) {
	total, err := PaymentsTotal([]Payment{
		{Amount: 40},
		{Amount: 60},
	})
	require.NoError(t, err)
	require.InDelta(t, 100.0, total, 1e-9)
}

func TestPaymentsTotalRejectsNonPositive(t *testing.T) {
	for _, amount := range []float64{0, -1} {
		_, err := PaymentsTotal([]Payment{{Amount: amount}})
		require.ErrorIs(t, err, ErrInvalidPayment)
	}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name   string
		total  float64
		paid   float64
		expect SaleStatus
	}{
		{"nothing paid", 100, 0, SaleStatusUnpaid},
		{"partially paid", 100, 40, SaleStatusPartial},
		{"fully paid", 100, 100, SaleStatusPaid},
		{"overpaid still paid", 100, 120, SaleStatusPaid},
		{"zero total", 0, 0, SaleStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, DeriveStatus(tc.total, tc.paid))
		})
	}
}
