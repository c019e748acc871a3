package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate_SingleLine(t *testing.T) {
	got := Calculate([]Line{{UnitPrice: dec("150.00"), Quantity: 2}}, decimal.Zero, "", nil)

	assert.Equal(t, "300.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "30.00", got.Tax.StringFixed(2))
	assert.Equal(t, "0.00", got.Shipping.StringFixed(2))
	assert.Equal(t, "0.00", got.Discount.StringFixed(2))
	assert.Equal(t, "330.00", got.Total.StringFixed(2))
}

func TestCalculate_TotalInvariant(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec("19.99"), Quantity: 3},
		{UnitPrice: dec("0.05"), Quantity: 1},
		{UnitPrice: dec("249.50"), Quantity: 1},
	}
	got := Calculate(lines, dec("7.5"), "WELCOME", NewFlatRatePolicy())

	want := got.Subtotal.Add(got.Tax).Add(got.Shipping).Sub(got.Discount)
	assert.True(t, want.Equal(got.Total))
	assert.True(t, Round(got.Subtotal.Mul(TaxRate)).Equal(got.Tax))
}

func TestCalculate_Empty(t *testing.T) {
	got := Calculate(nil, decimal.Zero, "XYZ", NewFlatRatePolicy())
	assert.True(t, got.Total.IsZero())
	assert.True(t, got.Discount.IsZero())
}

func TestFlatRatePolicy_IgnoresCodeContent(t *testing.T) {
	p := NewFlatRatePolicy()
	for _, code := range []string{"XYZ", "SAVE50", "anything-at-all"} {
		assert.Equal(t, "30.00", p.Discount(code, dec("300")).StringFixed(2), code)
	}
	assert.True(t, p.Discount("   ", dec("300")).IsZero())
}
