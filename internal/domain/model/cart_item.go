package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細
// Price は直近の再計算時点の商品価格。
type CartItem struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID       int64           `gorm:"not null;index;uniqueIndex:ux_cart_product" json:"-"`
	ProductID    int64           `gorm:"not null;index;uniqueIndex:ux_cart_product" json:"productId"`
	Product      *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	PriceChanged bool            `gorm:"-" json:"priceChanged,omitempty"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}
