package checkout

import "github.com/shopspring/decimal"

// Default shipping terms: a flat 25.00 below a 200.00 order total.
var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(200)
	DefaultShippingFee           = decimal.NewFromInt(25)
)

// ShippingPolicy charges a flat fee until the cart total reaches the
// free-shipping threshold.
type ShippingPolicy struct {
	Threshold decimal.Decimal
	Fee       decimal.Decimal
}

// DefaultShippingPolicy returns the store's standard shipping terms.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{Threshold: DefaultFreeShippingThreshold, Fee: DefaultShippingFee}
}

// Shipping returns the fee owed for a cart total. Totals at or above the
// threshold ship free.
func (p ShippingPolicy) Shipping(total decimal.Decimal) decimal.Decimal {
	if total.GreaterThanOrEqual(p.Threshold) {
		return decimal.Zero
	}
	return p.Fee
}

// Quote is the price breakdown shown at checkout.
type Quote struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	Threshold decimal.Decimal `json:"free_shipping_threshold"`
}

// Quote prices a cart total. Display and final totals both come from here.
func (p ShippingPolicy) Quote(subtotal decimal.Decimal) Quote {
	shipping := p.Shipping(subtotal)
	return Quote{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal.Add(shipping),
		Threshold: p.Threshold,
	}
}
