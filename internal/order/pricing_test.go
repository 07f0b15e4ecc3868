package order_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/order"
)

func TestComputeTotals_NoCoupon_UnderThreshold(t *testing.T) {
	totals := order.ComputeTotals(80, 0)

	expected := order.Totals{
		ItemsPrice:    80,
		DiscountPrice: 0,
		ShippingPrice: 10,
		TaxPrice:      8,
		TotalPrice:    98,
	}
	if diff := cmp.Diff(expected, totals); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeTotals_FreeShippingOverThreshold(t *testing.T) {
	totals := order.ComputeTotals(150, 0)

	require.InDelta(t, 0.0, totals.ShippingPrice, 1e-9)
	require.InDelta(t, 15.0, totals.TaxPrice, 1e-9)
	require.InDelta(t, 165.0, totals.TotalPrice, 1e-9)
}

func TestComputeTotals_ExactThresholdStillPaysShipping(t *testing.T) {
	totals := order.ComputeTotals(100, 0)

	require.InDelta(t, 10.0, totals.ShippingPrice, 1e-9)
}

func TestComputeTotals_WithCoupon(t *testing.T) {
	totals := order.ComputeTotals(200, 10)

	require.InDelta(t, 20.0, totals.DiscountPrice, 1e-9)
	require.InDelta(t, 0.0, totals.ShippingPrice, 1e-9)
	require.InDelta(t, 18.0, totals.TaxPrice, 1e-9)
	require.InDelta(t, 198.0, totals.TotalPrice, 1e-9)
}

// The free-shipping decision looks at the pre-discount items price: a
// coupon that drags the discounted total below the threshold does not
// re-introduce the shipping fee.
func TestComputeTotals_ShippingIgnoresDiscount(t *testing.T) {
	totals := order.ComputeTotals(110, 50)

	require.InDelta(t, 55.0, totals.DiscountPrice, 1e-9)
	require.InDelta(t, 0.0, totals.ShippingPrice, 1e-9)
	require.InDelta(t, 5.5, totals.TaxPrice, 1e-9)
	require.InDelta(t, 60.5, totals.TotalPrice, 1e-9)
}

func TestItemsPrice(t *testing.T) {
	lines := []order.Line{
		{Price: 25.5, Quantity: 2},
		{Price: 10, Quantity: 3},
	}
	require.InDelta(t, 81.0, order.ItemsPrice(lines), 1e-9)
	require.InDelta(t, 0.0, order.ItemsPrice(nil), 1e-9)
}
