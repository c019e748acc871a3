package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 1ユーザーにつきカートは1つ（user_id unique）
type Cart struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"not null;uniqueIndex" json:"userId"`
	Items       []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax"`
	Shipping    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping"`
	Discount    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total"`
	CouponCode  string          `gorm:"type:varchar(60)" json:"couponCode"`
	LastUpdated time.Time       `gorm:"not null" json:"lastUpdated"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

// FindItem は productID の明細の位置を返す。無ければ -1。
func (c *Cart) FindItem(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clear は明細・クーポン・金額をすべて空にする。
func (c *Cart) Clear(now time.Time) {
	c.Items = []CartItem{}
	c.CouponCode = ""
	c.Subtotal = decimal.Zero
	c.Tax = decimal.Zero
	c.Shipping = decimal.Zero
	c.Discount = decimal.Zero
	c.Total = decimal.Zero
	c.LastUpdated = now
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
