package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusInTransit  OrderStatus = "in_transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// 在庫を戻す終端ステータス
func (s OrderStatus) ReleasesStock() bool {
	return s == OrderStatusCancelled || s == OrderStatusReturned
}

// 厳格モード用の遷移表
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusDispatched, OrderStatusCancelled},
	OrderStatusDispatched: {OrderStatusInTransit, OrderStatusDelivered},
	OrderStatusInTransit:  {OrderStatusDelivered, OrderStatusReturned},
	OrderStatusDelivered:  {OrderStatusReturned},
	OrderStatusCancelled:  {},
	OrderStatusReturned:   {},
}

// CanTransitionTo は遷移表で next が許可されているかを返す。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range orderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodPaypal         PaymentMethod = "paypal"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCashOnDelivery, PaymentMethodBankTransfer, PaymentMethodPaypal:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// 請求先・配送先（注文に埋め込み）
type Address struct {
	FullName   string `gorm:"type:varchar(120)" json:"fullName"`
	Phone      string `gorm:"type:varchar(30)" json:"phone"`
	Line1      string `gorm:"type:varchar(255)" json:"line1"`
	Line2      string `gorm:"type:varchar(255)" json:"line2,omitempty"`
	City       string `gorm:"type:varchar(120)" json:"city"`
	State      string `gorm:"type:varchar(120)" json:"state,omitempty"`
	PostalCode string `gorm:"type:varchar(20)" json:"postalCode"`
	Country    string `gorm:"type:varchar(80)" json:"country"`
}

// 必須項目が埋まっているか
func (a Address) Complete() bool {
	return a.FullName != "" && a.Line1 != "" && a.City != "" && a.Country != ""
}

type ShippingInfo struct {
	Method         string          `gorm:"type:varchar(40);not null;default:'standard'" json:"method"`
	Cost           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"cost"`
	Carrier        string          `gorm:"type:varchar(80)" json:"carrier,omitempty"`
	TrackingNumber string          `gorm:"type:varchar(120)" json:"trackingNumber,omitempty"`
	TrackingURL    string          `gorm:"type:varchar(500)" json:"trackingUrl,omitempty"`
}

// 決済は記録のみ（ゲートウェイ連携なし）
type PaymentInfo struct {
	Method        PaymentMethod `gorm:"type:varchar(30);not null" json:"method"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TransactionID string        `gorm:"type:varchar(120)" json:"transactionId,omitempty"`
}

// 作成時点の金額スナップショット（以後変更しない）
type Pricing struct {
	Subtotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Shipping decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping"`
	Discount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total    decimal.Decimal `gorm:"type:numeric(12,2);not null;index" json:"total"`
}

type CouponSnapshot struct {
	Code     string          `gorm:"type:varchar(60)" json:"code,omitempty"`
	Discount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
}

type Order struct {
	ID              int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string             `gorm:"type:varchar(40);uniqueIndex;not null" json:"orderNumber"`
	UserID          int64              `gorm:"not null;index" json:"userId"`
	Items           []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Status          OrderStatus        `gorm:"type:varchar(20);not null;index" json:"status"`
	StatusTimeline  []OrderStatusEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"statusTimeline"`
	BillingAddress  Address            `gorm:"embedded;embeddedPrefix:billing_" json:"billingAddress"`
	ShippingAddress Address            `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	Shipping        ShippingInfo       `gorm:"embedded;embeddedPrefix:ship_" json:"shipping"`
	Payment         PaymentInfo        `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	Pricing         Pricing            `gorm:"embedded;embeddedPrefix:price_" json:"pricing"`
	Coupon          CouponSnapshot     `gorm:"embedded;embeddedPrefix:coupon_" json:"coupon"`
	CreatedAt       time.Time          `gorm:"not null;index" json:"createdAt"`
	UpdatedAt       time.Time          `gorm:"not null" json:"updatedAt"`
}

// AppendStatus はステータスを上書きしてタイムラインに1件追加する。
func (o *Order) AppendStatus(status OrderStatus, notes string, actorID *int64, now time.Time) OrderStatusEvent {
	ev := OrderStatusEvent{
		OrderID:   o.ID,
		Status:    status,
		Notes:     notes,
		ActorID:   actorID,
		CreatedAt: now,
	}
	o.Status = status
	o.UpdatedAt = now
	o.StatusTimeline = append(o.StatusTimeline, ev)
	return ev
}
