package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

func TestPDFRenderer_Render(t *testing.T) {
	order := model.Order{
		OrderNumber: "ORD-12345678-AB12",
		Status:      model.OrderStatusConfirmed,
		Items: []model.OrderItem{
			{Name: "Air Jordan 1 Retro High", SKU: "LP-NIK-000001", Quantity: 1, Price: decimal.RequireFromString("150"), Subtotal: decimal.RequireFromString("150")},
		},
		BillingAddress:  model.Address{FullName: "Dana Müller", Line1: "1 Main St", City: "Berlin", Country: "DE"},
		ShippingAddress: model.Address{FullName: "Dana Müller", Line1: "1 Main St", City: "Berlin", Country: "DE"},
		Payment:         model.PaymentInfo{Method: model.PaymentMethodCard, Status: model.PaymentStatusPaid},
		Pricing: model.Pricing{
			Subtotal: decimal.RequireFromString("150"),
			Tax:      decimal.RequireFromString("15"),
			Shipping: decimal.Zero,
			Discount: decimal.RequireFromString("15"),
			Total:    decimal.RequireFromString("150"),
		},
		Coupon:    model.CouponSnapshot{Code: "WELCOME", Discount: decimal.RequireFromString("15")},
		CreatedAt: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}

	b, err := NewPDFRenderer("").Render(order)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
	assert.Greater(t, len(b), 1000)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1.50", money(decimal.RequireFromString("1.5")))
}
