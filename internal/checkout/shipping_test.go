package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShippingPolicy_Shipping(t *testing.T) {
	p := DefaultShippingPolicy()

	tests := []struct {
		total string
		want  string
	}{
		{"0", "25"},
		{"150", "25"},
		{"199.99", "25"},
		{"200", "0"},
		{"200.00", "0"},
		{"450.50", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			got := p.Shipping(decimal.RequireFromString(tt.total))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestShippingPolicy_Quote(t *testing.T) {
	p := ShippingPolicy{Threshold: decimal.NewFromInt(100), Fee: decimal.RequireFromString("9.50")}

	q := p.Quote(decimal.NewFromInt(40))
	assert.Equal(t, "40.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "9.50", q.Shipping.StringFixed(2))
	assert.Equal(t, "49.50", q.Total.StringFixed(2))
	assert.Equal(t, "100.00", q.Threshold.StringFixed(2))

	q = p.Quote(decimal.NewFromInt(100))
	assert.True(t, q.Shipping.IsZero())
	assert.Equal(t, "100.00", q.Total.StringFixed(2))
}
