package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

// 売上に数えないステータス
var excludedFromRevenue = []model.OrderStatus{model.OrderStatusCancelled, model.OrderStatusReturned}

// ReportGormRepository はダッシュボード・財務レポートの集計クエリ。
type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

func (r *ReportGormRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}

// 削除済みは含めない
func (r *ReportGormRepository) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (r *ReportGormRepository) CountOrders(ctx context.Context, from, to *time.Time) (int64, error) {
	var n int64
	err := r.orders(ctx, from, to).Count(&n).Error
	return n, err
}

func (r *ReportGormRepository) Revenue(ctx context.Context, from, to *time.Time) (repo.RevenueSummary, error) {
	var s repo.RevenueSummary
	err := r.revenueOrders(ctx, from, to).
		Select(`COUNT(*) AS orders,
			COALESCE(SUM(price_subtotal), 0) AS subtotal,
			COALESCE(SUM(price_tax), 0) AS tax,
			COALESCE(SUM(price_shipping), 0) AS shipping,
			COALESCE(SUM(price_discount), 0) AS discount,
			COALESCE(SUM(price_total), 0) AS revenue`).
		Scan(&s).Error
	return s, err
}

func (r *ReportGormRepository) OrdersByStatus(ctx context.Context, from, to *time.Time) ([]repo.StatusCount, error) {
	rows := []repo.StatusCount{}
	err := r.orders(ctx, from, to).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

func (r *ReportGormRepository) UsersByRole(ctx context.Context) ([]repo.RoleCount, error) {
	rows := []repo.RoleCount{}
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Order("role").
		Scan(&rows).Error
	return rows, err
}

func (r *ReportGormRepository) RevenueByPaymentMethod(ctx context.Context, from, to *time.Time) ([]repo.MethodRevenue, error) {
	rows := []repo.MethodRevenue{}
	err := r.revenueOrders(ctx, from, to).
		Select("payment_method AS method, COUNT(*) AS orders, COALESCE(SUM(price_total), 0) AS revenue").
		Group("payment_method").
		Order("revenue desc").
		Scan(&rows).Error
	return rows, err
}

// 日別（UTC）の件数と売上。売上の無い日は返さない。
func (r *ReportGormRepository) DailyRevenue(ctx context.Context, from, to time.Time) ([]repo.DailyRevenue, error) {
	rows := []repo.DailyRevenue{}
	err := r.revenueOrders(ctx, &from, &to).
		Select("date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, COUNT(*) AS orders, COALESCE(SUM(price_total), 0) AS revenue").
		Group("day").
		Order("day").
		Scan(&rows).Error
	return rows, err
}

// [from, to) の注文
func (r *ReportGormRepository) orders(ctx context.Context, from, to *time.Time) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}
	return q
}

func (r *ReportGormRepository) revenueOrders(ctx context.Context, from, to *time.Time) *gorm.DB {
	return r.orders(ctx, from, to).Where("status NOT IN ?", excludedFromRevenue)
}
