package order

const (
	// Orders above this items total ship for free; the threshold is
	// checked against the pre-discount items price.
	freeShippingThreshold = 100.0
	flatShippingPrice     = 10.0
	taxRate               = 0.10
)

// Totals is the server-computed money breakdown of an order.
type Totals struct {
	ItemsPrice    float64
	DiscountPrice float64
	ShippingPrice float64
	TaxPrice      float64
	TotalPrice    float64
}

// ComputeTotals derives all order totals from the authoritative items
// price and a coupon discount percentage (0 for no coupon). Tax applies
// to the discounted items price; the shipping decision does not.
func ComputeTotals(itemsPrice float64, discountPercentage int) Totals {
	t := Totals{ItemsPrice: itemsPrice}

	t.DiscountPrice = itemsPrice * float64(discountPercentage) / 100

	if itemsPrice > freeShippingThreshold {
		t.ShippingPrice = 0
	} else {
		t.ShippingPrice = flatShippingPrice
	}

	t.TaxPrice = taxRate * (itemsPrice - t.DiscountPrice)
	t.TotalPrice = itemsPrice - t.DiscountPrice + t.ShippingPrice + t.TaxPrice

	return t
}

// ItemsPrice sums price*quantity over snapshot lines.
func ItemsPrice(lines []Line) float64 {
	var total float64
	for i := range lines {
		total += lines[i].Price * float64(lines[i].Quantity)
	}
	return total
}
