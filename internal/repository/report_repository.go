package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RoleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

type MethodRevenue struct {
	Method  string          `json:"method"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DailyRevenue struct {
	Day     time.Time       `json:"day"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// 売上集計（キャンセル・返品は除外）
type RevenueSummary struct {
	Orders   int64           `json:"orders"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// 集計クエリ（毎回DBで計算、キャッシュしない）
type ReportRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context, from, to *time.Time) (int64, error)
	Revenue(ctx context.Context, from, to *time.Time) (RevenueSummary, error)
	OrdersByStatus(ctx context.Context, from, to *time.Time) ([]StatusCount, error)
	UsersByRole(ctx context.Context) ([]RoleCount, error)
	RevenueByPaymentMethod(ctx context.Context, from, to *time.Time) ([]MethodRevenue, error)
	DailyRevenue(ctx context.Context, from, to time.Time) ([]DailyRevenue, error)
}
