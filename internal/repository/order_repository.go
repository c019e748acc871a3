package repository

import (
	"context"
	"time"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
}

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time // 含まない
}

type OrderRepository interface {
	// 明細・タイムラインも一緒に保存
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, f OrderListFilter) ([]model.Order, int64, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	ListAll(ctx context.Context, from, to *time.Time) ([]model.Order, error)

	// status を上書きしてタイムラインに1件追記
	AppendStatus(ctx context.Context, orderID int64, ev model.OrderStatusEvent) error
	// 追跡情報だけ更新（明細・金額は触らない）
	UpdateTracking(ctx context.Context, orderID int64, carrier, trackingNumber, trackingURL string) error
	UpdatePayment(ctx context.Context, orderID int64, status model.PaymentStatus, transactionID string) error
}
