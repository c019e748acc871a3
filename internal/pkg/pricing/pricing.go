// Package pricing はカート・注文の金額計算を行う。
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// 税率 10%
var TaxRate = decimal.RequireFromString("0.10")

// Line は計算対象の1明細（単価は商品の現在価格）
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// CouponPolicy はクーポンコードから割引額を決める。
type CouponPolicy interface {
	Discount(code string, subtotal decimal.Decimal) decimal.Decimal
}

// FlatRatePolicy は空でないコードなら何でも Rate 分を割り引く。
// コードの中身は見ない（クーポンマスタ導入までの暫定）。
type FlatRatePolicy struct {
	Rate decimal.Decimal
}

func NewFlatRatePolicy() FlatRatePolicy {
	return FlatRatePolicy{Rate: decimal.RequireFromString("0.10")}
}

func (p FlatRatePolicy) Discount(code string, subtotal decimal.Decimal) decimal.Decimal {
	if strings.TrimSpace(code) == "" {
		return decimal.Zero
	}
	return Round(subtotal.Mul(p.Rate))
}

// Round は小数2桁に四捨五入する。
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal は単価×数量。
func LineTotal(l Line) decimal.Decimal {
	return Round(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
}

// Calculate は total = subtotal + tax + shipping - discount を組み立てる。
// policy が nil ならクーポン割引は 0。
func Calculate(lines []Line, shipping decimal.Decimal, couponCode string, policy CouponPolicy) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l))
	}

	discount := decimal.Zero
	if policy != nil && couponCode != "" {
		discount = policy.Discount(couponCode, subtotal)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	tax := Round(subtotal.Mul(TaxRate))
	shipping = Round(shipping)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}
