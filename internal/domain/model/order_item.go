package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点の商品情報を非正規化して持つ
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"-"`
	ProductID int64           `gorm:"not null;index" json:"productId"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU       string          `gorm:"column:sku;type:varchar(40);not null" json:"sku"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"-"`
}

// ステータス履歴（追記のみ）
type OrderStatusEvent struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   int64       `gorm:"not null;index" json:"-"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes     string      `gorm:"type:text" json:"notes,omitempty"`
	ActorID   *int64      `json:"actorId,omitempty"`
	CreatedAt time.Time   `gorm:"not null" json:"timestamp"`
}
